// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/LeeDigitalWorks/zapthumb/pkg/api"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function",
	Long: `Start the Lambda runtime loop and answer API Gateway v2 HTTP events.
The request path and stage are taken from the event's request context.`,
	Run: runLambda,
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}

func runLambda(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	p := newPipeline(cmd.Context(), cfg)

	lambda.Start(api.NewLambdaHandler(p))
}
