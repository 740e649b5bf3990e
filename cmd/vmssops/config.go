package main

import (
	"os"

	"github.com/libopenstorage/vmssops"
	"github.com/libopenstorage/vmssops/azure"
	"github.com/libopenstorage/vmssops/pkg/envvars"
	"github.com/libopenstorage/vmssops/pkg/parser"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// loadJob reads the job spec file, if any, and applies the scale set flags
// on top of it.
func loadJob(c *cli.Context) (*parser.JobSpec, error) {
	job := &parser.JobSpec{}
	if path := c.String("job"); path != "" {
		var err error
		job, err = parser.NewJobSpecParser().UnmarshalFromYaml(path)
		if err != nil {
			return nil, err
		}
	}

	if v := c.String("credentials-id"); v != "" {
		job.AzureCredentialsID = v
	}
	if v := c.String("resource-group"); v != "" {
		job.ResourceGroup = v
	}
	if v := c.String("name"); v != "" {
		job.Name = v
	}
	return job, nil
}

// imageFromFlags returns the image given on the command line, or nil if no
// image flag is set.
func imageFromFlags(c *cli.Context) (*vmssops.ImageSpec, error) {
	id := c.String("image-id")
	publisher := c.String("publisher")
	offer := c.String("offer")
	sku := c.String("sku")
	version := c.String("version")
	if id == "" && publisher == "" && offer == "" && sku == "" && version == "" {
		return nil, nil
	}
	if err := vmssops.ValidateImageFields(id, publisher, offer, sku, version); err != nil {
		return nil, err
	}
	image := vmssops.NewImageSpec(id, publisher, offer, sku, version)
	return &image, nil
}

// setup creates the scale set client and the placeholder expander of a
// command.
func setup(c *cli.Context, credentialsID string) (vmssops.ScaleSetClient, vmssops.Expander, error) {
	env, err := expander(c.GlobalStringSlice("env"))
	if err != nil {
		return nil, nil, err
	}

	client, err := newClient(c.GlobalString("credentials-file"), credentialsID)
	if err != nil {
		return nil, nil, err
	}
	return client, env, nil
}

func expander(pairs []string) (envvars.EnvVars, error) {
	overrides, err := envvars.Parse(pairs)
	if err != nil {
		return nil, err
	}
	return envvars.FromEnviron(os.Environ()).Override(overrides), nil
}

func newClient(credentialsFile, credentialsID string) (vmssops.ScaleSetClient, error) {
	if credentialsFile == "" {
		logrus.Debugf("No credentials file, using environment")
		return azure.NewEnvClient()
	}

	store, err := parser.NewCredentialStoreParser().UnmarshalFromYaml(credentialsFile)
	if err != nil {
		return nil, err
	}
	sp, err := store.Lookup(credentialsID)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Using credentials %s", credentialsID)
	return azure.NewClient(azureConfig(sp))
}

func azureConfig(sp *parser.ServicePrincipal) azure.Config {
	return azure.Config{
		SubscriptionID:          sp.SubscriptionID,
		TenantID:                sp.Tenant,
		ClientID:                sp.ClientID,
		ClientSecret:            sp.ClientSecret,
		AuthorityHost:           sp.AuthenticationEndpoint,
		ResourceManagerEndpoint: sp.ResourceManagerEndpoint,
	}
}
