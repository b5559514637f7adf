package main

import (
	"context"
	"fmt"

	"github.com/International-Combat-Archery-Alliance/event-checkin/config"
	"github.com/International-Combat-Archery-Alliance/event-checkin/dynamo"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

func loadAWSConfig(ctx context.Context, cfg config.DynamoConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Endpoint != "" {
		// dynamodb-local accepts any credentials
		opts = append(opts,
			awsconfig.WithRegion("localhost"),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to get aws config: %w", err)
	}

	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	return awsCfg, nil
}

func newDynamoDB(ctx context.Context, cfg config.DynamoConfig) (*dynamo.DB, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	db := dynamo.NewDB(client, cfg.TableName)
	if cfg.CreateTable {
		if err := db.CreateTable(ctx); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func (a *app) openDynamoRepo(ctx context.Context) (events.Repository, error) {
	db, err := newDynamoDB(ctx, a.cfg.Dynamo)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (a *app) newSSMClient(ctx context.Context) (config.ParameterGetter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get aws config: %w", err)
	}

	return ssm.NewFromConfig(awsCfg), nil
}
