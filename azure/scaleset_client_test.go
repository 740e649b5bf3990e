package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/libopenstorage/vmssops"
	"github.com/stretchr/testify/require"
)

const (
	testSubscription  = "test-subscription"
	testResourceGroup = "test-rg"
	testScaleSet      = "test-vmss"
)

var scaleSetPath = fmt.Sprintf(
	"/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Compute/virtualMachineScaleSets/%s",
	testSubscription, testResourceGroup, testScaleSet)

type fakeCredential struct{}

func (fakeCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "test-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) vmssops.ScaleSetClient {
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClientWithCredential(Config{
		SubscriptionID:          testSubscription,
		ResourceManagerEndpoint: srv.URL,
		Transport:               srv.Client(),
	}, fakeCredential{})
	require.NoError(t, err)
	return client
}

func TestIsNotFound(t *testing.T) {
	testCases := []struct {
		name        string
		input       error
		expectedRes bool
	}{
		{
			name:        "nil error",
			input:       nil,
			expectedRes: false,
		},
		{
			name:        "plain error",
			input:       errors.New("boom"),
			expectedRes: false,
		},
		{
			name:        "not found response",
			input:       &azcore.ResponseError{StatusCode: http.StatusNotFound},
			expectedRes: true,
		},
		{
			name:        "conflict response",
			input:       &azcore.ResponseError{StatusCode: http.StatusConflict},
			expectedRes: false,
		},
		{
			name:        "wrapped not found response",
			input:       &vmssops.ErrProvider{Op: "get", Err: &azcore.ResponseError{StatusCode: http.StatusNotFound}},
			expectedRes: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expectedRes, isNotFound(tc.input))
		})
	}
}

func TestRequiredInstanceIDs(t *testing.T) {
	testCases := []struct {
		name        string
		input       []string
		expectedRes []*string
	}{
		{
			name:        "no instances",
			input:       []string{},
			expectedRes: []*string{},
		},
		{
			name:        "instances kept verbatim",
			input:       []string{"1", " 2", ""},
			expectedRes: []*string{to.StringPtr("1"), to.StringPtr(" 2"), to.StringPtr("")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := requiredInstanceIDs(tc.input)
			require.Equal(t, tc.expectedRes, res.InstanceIDs)
		})
	}
}

func TestCloudConfiguration(t *testing.T) {
	public := Config{}.cloudConfiguration()
	require.Equal(t, cloud.AzurePublic.ActiveDirectoryAuthorityHost, public.ActiveDirectoryAuthorityHost)
	require.Equal(t, cloud.AzurePublic.Services[cloud.ResourceManager], public.Services[cloud.ResourceManager])

	custom := Config{
		AuthorityHost:           "https://login.example.com/",
		ResourceManagerEndpoint: "https://management.example.com",
	}.cloudConfiguration()
	require.Equal(t, "https://login.example.com/", custom.ActiveDirectoryAuthorityHost)
	require.Equal(t, cloud.ServiceConfiguration{
		Audience: "https://management.example.com",
		Endpoint: "https://management.example.com",
	}, custom.Services[cloud.ResourceManager])
	// the shared public configuration is not modified
	require.NotEqual(t, "https://management.example.com",
		cloud.AzurePublic.Services[cloud.ResourceManager].Endpoint)
}

func TestNewClientRequiresSubscription(t *testing.T) {
	_, err := NewClientWithCredential(Config{}, fakeCredential{})
	var configErr *vmssops.ErrInvalidConfig
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "subscription id", configErr.Field)
}

func TestNewClientRequiresServicePrincipal(t *testing.T) {
	_, err := NewClient(Config{SubscriptionID: testSubscription, ClientSecret: "secret"})
	var configErr *vmssops.ErrInvalidConfig
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "tenant id", configErr.Field)
}

func TestGet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, scaleSetPath, r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "test-vmss-inner-id",
			"name": "test-vmss",
			"location": "eastus",
			"properties": {
				"virtualMachineProfile": {
					"storageProfile": {
						"imageReference": {"id": "image-1"}
					}
				}
			}
		}`)
	})

	vmss, err := client.Get(context.Background(), testResourceGroup, testScaleSet)
	require.NoError(t, err)
	require.Equal(t, "test-vmss-inner-id", *vmss.ID)
	require.Equal(t, "image-1", *vmss.Properties.VirtualMachineProfile.StorageProfile.ImageReference.ID)
}

func TestGetNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"code": "ResourceNotFound", "message": "not found"}}`)
	})

	vmss, err := client.Get(context.Background(), testResourceGroup, testScaleSet)
	require.Nil(t, vmss)
	require.True(t, errors.Is(err, vmssops.ErrResourceNotFound))
	require.Contains(t, err.Error(), testResourceGroup+"/"+testScaleSet)
}

func TestCreateOrUpdate(t *testing.T) {
	var submitted armcompute.VirtualMachineScaleSet
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, scaleSetPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name": "test-vmss", "properties": {"provisioningState": "Succeeded"}}`)
	})

	vmss := &armcompute.VirtualMachineScaleSet{
		Location: to.StringPtr("eastus"),
		Properties: &armcompute.VirtualMachineScaleSetProperties{
			VirtualMachineProfile: &armcompute.VirtualMachineScaleSetVMProfile{
				StorageProfile: &armcompute.VirtualMachineScaleSetStorageProfile{
					ImageReference: &armcompute.ImageReference{ID: to.StringPtr("id-new")},
				},
			},
		},
	}

	err := client.CreateOrUpdate(context.Background(), testResourceGroup, testScaleSet, vmss)
	require.NoError(t, err)
	require.Equal(t, "eastus", *submitted.Location)
	require.Equal(t, "id-new", *submitted.Properties.VirtualMachineProfile.StorageProfile.ImageReference.ID)
}

func TestUpdateInstances(t *testing.T) {
	var submitted armcompute.VirtualMachineScaleSetVMInstanceRequiredIDs
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, scaleSetPath+"/manualupgrade"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	})

	err := client.UpdateInstances(context.Background(), testResourceGroup, testScaleSet, []string{"1", "2", ""})
	require.NoError(t, err)
	require.Len(t, submitted.InstanceIDs, 3)
	require.Equal(t, "1", *submitted.InstanceIDs[0])
	require.Equal(t, "2", *submitted.InstanceIDs[1])
	require.Equal(t, "", *submitted.InstanceIDs[2])
}

func TestUpdateInstancesRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"code": "InvalidParameter", "message": "bad instance id"}}`)
	})

	err := client.UpdateInstances(context.Background(), testResourceGroup, testScaleSet, []string{"x"})
	require.Error(t, err)
	require.False(t, errors.Is(err, vmssops.ErrResourceNotFound))

	var respErr *azcore.ResponseError
	require.True(t, errors.As(err, &respErr))
	require.Equal(t, http.StatusBadRequest, respErr.StatusCode)
	require.Equal(t, "InvalidParameter", respErr.ErrorCode)
}
