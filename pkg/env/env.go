// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"os"
	"sync"
)

const (
	Local      = "local"
	Lambda     = "lambda"
	Production = "production"
	Testing    = "testing"
)

var (
	Env string

	once sync.Once
)

func IsLocal() bool {
	return Env == Local
}

// IsLambda reports whether the process runs inside the AWS Lambda runtime,
// either declared through ENV or detected from the runtime environment.
func IsLambda() bool {
	return Env == Lambda
}

func IsProduction() bool {
	return Env == Production || Env == Lambda
}

func IsTesting() bool {
	return Env == Testing
}

func init() {
	once.Do(func() {
		Env = os.Getenv("ENV")
		if Env == "" && os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
			Env = Lambda
		}
		if Env == "" {
			Env = Production
		}
	})
}
