package config

import (
	"context"
	"fmt"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/confirm"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"gopkg.in/yaml.v3"
)

// ParameterGetter is the part of the SSM client the catalog needs.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// LoadCatalog builds the confirmation catalog. The SSM parameter, when set,
// holds a YAML mapping of action to message.
func LoadCatalog(ctx context.Context, cfg CatalogConfig, ssmClient ParameterGetter) (confirm.Catalog, error) {
	if cfg.SSMParameter != "" {
		messages, err := fetchCatalogMessages(ctx, cfg.SSMParameter, ssmClient)
		if err != nil {
			return confirm.Catalog{}, err
		}
		return newCatalog(messages)
	}

	if len(cfg.Messages) > 0 {
		return newCatalog(cfg.Messages)
	}

	return confirm.DefaultCatalog(), nil
}

func fetchCatalogMessages(ctx context.Context, name string, ssmClient ParameterGetter) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog parameter %q: %w", name, err)
	}
	if out.Parameter == nil {
		return nil, fmt.Errorf("catalog parameter %q has no value", name)
	}

	var messages map[string]string
	err = yaml.Unmarshal([]byte(aws.ToString(out.Parameter.Value)), &messages)
	if err != nil {
		return nil, fmt.Errorf("catalog parameter %q is not a YAML mapping: %w", name, err)
	}

	return messages, nil
}

func newCatalog(messages map[string]string) (confirm.Catalog, error) {
	byAction := make(map[confirm.Action]string, len(messages))
	for k, v := range messages {
		byAction[confirm.Action(k)] = v
	}

	catalog, err := confirm.NewCatalog(byAction)
	if err != nil {
		return confirm.Catalog{}, fmt.Errorf("invalid confirmation catalog: %w", err)
	}
	return catalog, nil
}
