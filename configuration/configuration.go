// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse the marketd Lua configuration file
package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/util"
)

// basic defaults (directories and files are relative to the
// "data_directory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "market"

	defaultLogDirectory = "log"
	defaultLogFile      = "marketd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	logger.DefaultTag: "critical",
}

// DatabaseType - where the ledger database lives
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// FeesType - the fee schedule applied by every validating node
//
// a zero entry keeps the built-in default
type FeesType struct {
	TransferBaseFee uint64 `gluamapper:"transfer_base_fee" json:"transfer_base_fee"`
	PerAssetFee     uint64 `gluamapper:"per_asset_fee" json:"per_asset_fee"`
	TradeBaseFee    uint64 `gluamapper:"trade_base_fee" json:"trade_base_fee"`
	ExchangeBaseFee uint64 `gluamapper:"exchange_base_fee" json:"exchange_base_fee"`
}

// Configuration - the full configuration tree
type Configuration struct {
	DataDirectory   string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile         string               `gluamapper:"pidfile" json:"pidfile"`
	TestMode        bool                 `gluamapper:"test_mode" json:"test_mode"`
	PlatformAccount string               `gluamapper:"platform_account" json:"platform_account"`
	Database        DatabaseType         `gluamapper:"database" json:"database"`
	Fees            FeesType             `gluamapper:"fees" json:"fees"`
	Logging         logger.Configuration `gluamapper:"logging" json:"logging"`
}

// GetConfiguration - read, decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths
	mayBeAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range mayBeAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// the platform account must decode and match the network
	if "" == options.PlatformAccount {
		return nil, fmt.Errorf("platform_account is not set")
	}
	platform, err := options.Platform()
	if nil != err {
		return nil, err
	}
	if platform.IsTesting() != options.TestMode {
		return nil, fmt.Errorf("platform_account: %q is for the wrong network", options.PlatformAccount)
	}

	return options, nil
}

// Platform - the decoded platform account receiving flat fees
func (options *Configuration) Platform() (*account.Account, error) {
	return account.AccountFromBase58(options.PlatformAccount)
}
