package azure

import (
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute"
	"github.com/libopenstorage/vmssops"
	"github.com/sirupsen/logrus"
)

const (
	envSubscriptionID          = "AZURE_SUBSCRIPTION_ID"
	envTenantID                = "AZURE_TENANT_ID"
	envClientID                = "AZURE_CLIENT_ID"
	envClientSecret            = "AZURE_CLIENT_SECRET"
	envAuthorityHost           = "AZURE_AUTHORITY_HOST"
	envResourceManagerEndpoint = "AZURE_RESOURCE_MANAGER_ENDPOINT"

	applicationID = "vmssops"
)

// Config holds the account settings used to build a scale set client.
type Config struct {
	// SubscriptionID is the subscription the scale sets live in.
	SubscriptionID string
	// TenantID, ClientID and ClientSecret identify a service principal. If
	// ClientSecret is empty the default Azure credential chain is used.
	TenantID     string
	ClientID     string
	ClientSecret string
	// AuthorityHost is the Azure Active Directory endpoint. Empty selects the
	// public cloud.
	AuthorityHost string
	// ResourceManagerEndpoint is the Azure Resource Manager endpoint. Empty
	// selects the public cloud.
	ResourceManagerEndpoint string
	// ResourceManagerAudience is the token audience for
	// ResourceManagerEndpoint. Defaults to the endpoint itself.
	ResourceManagerAudience string
	// Transport overrides the HTTP client used for ARM requests.
	Transport policy.Transporter
}

// NewEnvClient creates a scale set client from the AZURE_* environment
// variables. Only AZURE_SUBSCRIPTION_ID is required.
func NewEnvClient() (vmssops.ScaleSetClient, error) {
	subscriptionID, err := vmssops.GetEnvValueStrict(envSubscriptionID)
	if err != nil {
		return nil, err
	}

	return NewClient(Config{
		SubscriptionID:          subscriptionID,
		TenantID:                strings.TrimSpace(os.Getenv(envTenantID)),
		ClientID:                strings.TrimSpace(os.Getenv(envClientID)),
		ClientSecret:            strings.TrimSpace(os.Getenv(envClientSecret)),
		AuthorityHost:           strings.TrimSpace(os.Getenv(envAuthorityHost)),
		ResourceManagerEndpoint: strings.TrimSpace(os.Getenv(envResourceManagerEndpoint)),
	})
}

// NewClient creates a scale set client authenticated with the credentials in
// config.
func NewClient(config Config) (vmssops.ScaleSetClient, error) {
	credential, err := newCredential(config)
	if err != nil {
		return nil, err
	}
	return NewClientWithCredential(config, credential)
}

// NewClientWithCredential creates a scale set client using an existing
// credential. The credential fields of config are ignored.
func NewClientWithCredential(
	config Config,
	credential azcore.TokenCredential,
) (vmssops.ScaleSetClient, error) {
	if vmssops.IsBlank(config.SubscriptionID) {
		return nil, &vmssops.ErrInvalidConfig{Field: "subscription id"}
	}

	client, err := armcompute.NewVirtualMachineScaleSetsClient(
		config.SubscriptionID,
		credential,
		&arm.ClientOptions{
			ClientOptions: config.clientOptions(),
		},
	)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Using following configuration for azure:")
	logrus.Debugf("  Subscription: %s", config.SubscriptionID)
	logrus.Debugf("  Resource manager: %s", config.cloudConfiguration().Services[cloud.ResourceManager].Endpoint)

	return &scaleSetClient{client: client}, nil
}

func newCredential(config Config) (azcore.TokenCredential, error) {
	options := config.clientOptions()
	if config.ClientSecret != "" {
		if vmssops.IsBlank(config.TenantID) {
			return nil, &vmssops.ErrInvalidConfig{Field: "tenant id"}
		}
		if vmssops.IsBlank(config.ClientID) {
			return nil, &vmssops.ErrInvalidConfig{Field: "client id"}
		}
		return azidentity.NewClientSecretCredential(
			config.TenantID,
			config.ClientID,
			config.ClientSecret,
			&azidentity.ClientSecretCredentialOptions{ClientOptions: options},
		)
	}

	logrus.Debugf("No client secret set, using the default azure credential chain")
	return azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		ClientOptions: options,
		TenantID:      config.TenantID,
	})
}

func (c Config) clientOptions() azcore.ClientOptions {
	return azcore.ClientOptions{
		Cloud:     c.cloudConfiguration(),
		Telemetry: policy.TelemetryOptions{ApplicationID: applicationID},
		Transport: c.Transport,
	}
}

func (c Config) cloudConfiguration() cloud.Configuration {
	public := cloud.AzurePublic
	if c.AuthorityHost == "" && c.ResourceManagerEndpoint == "" {
		return public
	}

	conf := cloud.Configuration{
		ActiveDirectoryAuthorityHost: public.ActiveDirectoryAuthorityHost,
		Services:                     map[cloud.ServiceName]cloud.ServiceConfiguration{},
	}
	for name, service := range public.Services {
		conf.Services[name] = service
	}
	if c.AuthorityHost != "" {
		conf.ActiveDirectoryAuthorityHost = c.AuthorityHost
	}
	if c.ResourceManagerEndpoint != "" {
		audience := c.ResourceManagerAudience
		if audience == "" {
			audience = c.ResourceManagerEndpoint
		}
		conf.Services[cloud.ResourceManager] = cloud.ServiceConfiguration{
			Audience: audience,
			Endpoint: c.ResourceManagerEndpoint,
		}
	}
	return conf
}
