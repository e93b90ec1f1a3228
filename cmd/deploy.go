// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/LeeDigitalWorks/zapthumb/pkg/deploy"
	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"
	"github.com/LeeDigitalWorks/zapthumb/pkg/s3client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Upload the Lambda bundle and provisioning template",
	Long: `Upload build-zip/image-compress-lambda.zip to lambda/image-compress-lambda.zip
and provision/main.yaml to provision/main.yaml in the bucket named by S3_BUCKET.
S3_BUCKET and S3_REGION must be set.`,
	Run: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	f := deployCmd.Flags()
	f.String("root", ".", "Directory containing build-zip/ and provision/")

	viper.BindPFlags(f)
}

func runDeploy(cmd *cobra.Command, args []string) {
	if err := deploy.VerifyEnv(deploy.EnvBucket, deploy.EnvRegion); err != nil {
		logger.Fatal().Msg(err.Error())
	}
	bucket := os.Getenv(deploy.EnvBucket)

	ctx := cmd.Context()
	client, err := s3client.New(ctx, s3client.Config{
		Region:   os.Getenv(deploy.EnvRegion),
		Endpoint: os.Getenv("S3_ENDPOINT"),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create S3 client")
	}

	root := NewFlagLoader(cmd).String("root")
	if err := deploy.Upload(ctx, client, bucket, deploy.DefaultArtifacts(root)); err != nil {
		logger.Fatal().Err(err).Msg("deploy failed")
	}
}
