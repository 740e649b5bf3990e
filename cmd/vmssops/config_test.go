package main

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/libopenstorage/vmssops"
	"github.com/libopenstorage/vmssops/pkg/parser"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, name := range []string{
		"job", "credentials-id", "resource-group", "name",
		"image-id", "publisher", "offer", "sku", "version",
	} {
		set.String(name, "", "")
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestImageFromFlags(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		expectedRes *vmssops.ImageSpec
		expectErr   bool
	}{
		{
			name:        "no image flags",
			args:        []string{},
			expectedRes: nil,
		},
		{
			name: "custom image",
			args: []string{"--image-id", "image-1"},
			expectedRes: func() *vmssops.ImageSpec {
				i := vmssops.NewCustomImage("image-1")
				return &i
			}(),
		},
		{
			name: "marketplace image",
			args: []string{"--publisher", "p", "--offer", "o", "--sku", "s", "--version", "v"},
			expectedRes: func() *vmssops.ImageSpec {
				i := vmssops.NewMarketplaceImage("p", "o", "s", "v")
				return &i
			}(),
		},
		{
			name:      "custom and marketplace image",
			args:      []string{"--image-id", "image-1", "--sku", "s"},
			expectErr: true,
		},
		{
			name:      "blank image",
			args:      []string{"--image-id", " "},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := imageFromFlags(newContext(t, tc.args...))
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedRes, res)
		})
	}
}

func TestLoadJobFlagsOverrideFile(t *testing.T) {
	image := vmssops.NewCustomImage("image-1")
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, parser.NewJobSpecParser().MarshalToYaml(&parser.JobSpec{
		AzureCredentialsID: "sp",
		ResourceGroup:      "rg",
		Name:               "vmss",
		ImageReference:     &image,
	}, path))

	job, err := loadJob(newContext(t, "--job", path, "--name", "other"))
	require.NoError(t, err)
	require.Equal(t, "sp", job.AzureCredentialsID)
	require.Equal(t, "rg", job.ResourceGroup)
	require.Equal(t, "other", job.Name)
	require.Equal(t, image, *job.ImageReference)
}

func TestLoadJobWithoutFile(t *testing.T) {
	job, err := loadJob(newContext(t, "--resource-group", "rg"))
	require.NoError(t, err)
	require.Equal(t, "rg", job.ResourceGroup)
	require.Error(t, job.Validate())
}

func TestExpander(t *testing.T) {
	t.Setenv("VMSSOPS_TEST_VAR", "from-env")

	env, err := expander([]string{"BUILD=42"})
	require.NoError(t, err)
	require.Equal(t, "from-env/42/${MISSING}", env.Expand("${VMSSOPS_TEST_VAR}/$BUILD/${MISSING}"))

	_, err = expander([]string{"BUILD"})
	require.Error(t, err)
}

func TestAzureConfig(t *testing.T) {
	config := azureConfig(&parser.ServicePrincipal{
		SubscriptionID:          "sub",
		ClientID:                "client",
		ClientSecret:            "secret",
		Tenant:                  "tenant",
		AuthenticationEndpoint:  "https://login.example.com/",
		ResourceManagerEndpoint: "https://management.example.com/",
	})
	require.Equal(t, "sub", config.SubscriptionID)
	require.Equal(t, "tenant", config.TenantID)
	require.Equal(t, "client", config.ClientID)
	require.Equal(t, "secret", config.ClientSecret)
	require.Equal(t, "https://login.example.com/", config.AuthorityHost)
	require.Equal(t, "https://management.example.com/", config.ResourceManagerEndpoint)
}

func TestOutcomeError(t *testing.T) {
	require.NoError(t, outcomeError(vmssops.Outcome{Status: vmssops.Success}, nil))

	err := outcomeError(vmssops.Outcome{Status: vmssops.ProviderError, Message: "quota"}, nil)
	require.EqualError(t, err, "ProviderError: quota")

	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	require.Equal(t, exitFailure, exitErr.ExitCode())
}
