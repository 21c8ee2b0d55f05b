// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration shared by the speedsqueak
// binaries.
//
// The file is named by the SPEEDSQUEAK_CONFIG environment variable
// ([Load]) or a --config flag ([LoadFile]). There is no discovery and
// no fallback: a missing file is an error.
//
// A file may carry development, staging, and production sections. The
// section matching environment is decoded over the base values, so it
// only needs the keys that differ.
//
// Credential and path fields accept ${VAR} and ${VAR:-default}. The
// defaults read the Azure connection string and the Snowflake account
// from AZURE_CONNECTION_STRING and SNOWFLAKE_ACCOUNT, SNOWFLAKE_USER,
// SNOWFLAKE_PASSWORD, so a deployment can keep secrets out of the file.
package config
