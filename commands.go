// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/executor"
	"github.com/bitmark-inc/marketd/merkle"
	"github.com/bitmark-inc/marketd/mode"
	"github.com/bitmark-inc/marketd/status"
	"github.com/bitmark-inc/marketd/storage"
	"github.com/bitmark-inc/marketd/transactionrecord"
)

// data command handler
//
// commands that run against the open database: the offline replay
// harness and the status query
func processDataCommand(log *logger.L, ex *executor.Executor, arguments []string) bool {

	command := arguments[0]
	arguments = arguments[1:]

	switch command {
	case "apply":
		if 1 != len(arguments) {
			exitwithstatus.Message("apply: requires one transaction file argument")
		}
		err := applyFile(log, ex, arguments[0])
		if nil != err {
			exitwithstatus.Message("apply: %q error: %s", arguments[0], err)
		}

	case "status":
		if 1 != len(arguments) {
			exitwithstatus.Message("status: requires one hex transaction id argument")
		}
		var txId merkle.Digest
		err := txId.UnmarshalText([]byte(arguments[0]))
		if nil != err {
			exitwithstatus.Message("status: invalid transaction id: %q error: %s", arguments[0], err)
		}
		s, ok := status.Get(nil, txId)
		if !ok {
			fmt.Printf("%v: not executed\n", txId)
		} else {
			fmt.Printf("%v: %s\n", txId, s)
		}

	default:
		return false
	}
	return true
}

// apply hex packed transactions from a file, one per line, in order
//
// each line passes admission then execution; rejected lines are
// reported and skipped, executed lines print their recorded status
func applyFile(log *logger.L, ex *executor.Executor, fileName string) error {

	f, err := os.Open(fileName)
	if nil != err {
		return err
	}
	defer f.Close()

	lineNumber := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNumber += 1
		line := strings.TrimSpace(scanner.Text())
		if "" == line || strings.HasPrefix(line, "#") {
			continue
		}

		var packed transactionrecord.Packed
		err := packed.UnmarshalText([]byte(line))
		if nil != err {
			return fmt.Errorf("line: %d  hex error: %s", lineNumber, err)
		}

		tx, _, err := packed.Unpack(mode.IsTesting())
		if nil != err {
			return fmt.Errorf("line: %d  unpack error: %s", lineNumber, err)
		}

		err = ex.Verify(tx)
		if nil != err {
			log.Warnf("line: %d  rejected: %s", lineNumber, err)
			fmt.Printf("line: %d  rejected: %s\n", lineNumber, err)
			continue
		}

		trx := storage.NewTransaction()
		err = trx.Begin()
		if nil != err {
			return err
		}
		txId, result, err := ex.Execute(trx, tx)
		if nil != err {
			trx.Abort()
			return fmt.Errorf("line: %d  execute error: %s", lineNumber, err)
		}
		err = trx.Commit()
		if nil != err {
			return err
		}
		fmt.Printf("line: %d  txid: %v  status: %s\n", lineNumber, txId, result)
	}
	return scanner.Err()
}
