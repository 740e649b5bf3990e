package test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute"
	"github.com/libopenstorage/vmssops"
	"github.com/libopenstorage/vmssops/pkg/envvars"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	// operationTimeout bounds a single scale set update during tests
	operationTimeout = 30 * time.Minute
	// missingScaleSetName is assumed to not exist in the test resource group
	missingScaleSetName = "vmssops-test-missing"
)

// RunTest runs all tests against an existing scale set. The image of the
// scale set is re-applied unchanged. Instances are only upgraded if
// instanceIDs is not empty.
func RunTest(
	client vmssops.ScaleSetClient,
	resourceGroup, name, instanceIDs string,
	t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	live := get(ctx, t, client, resourceGroup, name)
	fmt.Printf("Current image reference: %s\n", vmssops.FormatImageReference(live))
	notFound(ctx, t, client, resourceGroup)
	probe(ctx, t, client, resourceGroup, name, live)
	updateImage(ctx, t, client, resourceGroup, name, live)
	updateInstances(ctx, t, client, resourceGroup, name, instanceIDs)
}

func get(
	ctx context.Context,
	t *testing.T,
	client vmssops.ScaleSetClient,
	resourceGroup, name string,
) *armcompute.ImageReference {
	vmss, err := client.Get(ctx, resourceGroup, name)
	require.NoError(t, err, "failed to get scale set")
	require.NotNil(t, vmss, "got nil scale set")
	require.NotNil(t, vmss.ID, "scale set has no id")
	return vmssops.ImageReference(vmss)
}

func notFound(ctx context.Context, t *testing.T, client vmssops.ScaleSetClient, resourceGroup string) {
	_, err := client.Get(ctx, resourceGroup, missingScaleSetName)
	require.Error(t, err, "expected error getting missing scale set")
	require.True(t, errors.Is(err, vmssops.ErrResourceNotFound),
		"expected not found error, got %v", err)

	outcome, err := vmssops.NewOrchestrator(client).
		UpdateImage(ctx, resourceGroup, missingScaleSetName, vmssops.NewCustomImage("unused"), nil)
	require.NoError(t, err)
	require.Equal(t, vmssops.ResourceNotFound, outcome.Status)
}

func probe(
	ctx context.Context,
	t *testing.T,
	client vmssops.ScaleSetClient,
	resourceGroup, name string,
	live *armcompute.ImageReference,
) {
	isCustom, err := vmssops.IsCustomImage(ctx, client, resourceGroup, name)
	require.NoError(t, err, "failed to probe scale set image")
	require.Equal(t, vmssops.LiveImageKind(live) == vmssops.ImageKindCustom, isCustom)

	isCustom, err = vmssops.IsCustomImage(ctx, client, resourceGroup, missingScaleSetName)
	require.NoError(t, err)
	require.False(t, isCustom)
}

func updateImage(
	ctx context.Context,
	t *testing.T,
	client vmssops.ScaleSetClient,
	resourceGroup, name string,
	live *armcompute.ImageReference,
) {
	// Re-apply the live image through a placeholder so expansion is exercised.
	var desired vmssops.ImageSpec
	env := envvars.New()
	if vmssops.LiveImageKind(live) == vmssops.ImageKindCustom {
		env = envvars.New("IMAGE_ID", *live.ID)
		desired = vmssops.NewCustomImage("${IMAGE_ID}")
	} else {
		desired = vmssops.NewMarketplaceImage(
			deref(live.Publisher), deref(live.Offer), deref(live.SKU), deref(live.Version))
	}

	outcome, err := vmssops.NewOrchestrator(client, vmssops.WithLogger(logrus.StandardLogger())).
		UpdateImage(ctx, resourceGroup, name, desired, env)
	require.NoError(t, err)
	require.True(t, outcome.Succeeded(), "failed to update scale set: %s", outcome.Message)

	after := get(ctx, t, client, resourceGroup, name)
	require.Equal(t, vmssops.FormatImageReference(live), vmssops.FormatImageReference(after),
		"image reference changed by no-op update")
}

func updateInstances(
	ctx context.Context,
	t *testing.T,
	client vmssops.ScaleSetClient,
	resourceGroup, name, instanceIDs string,
) {
	if instanceIDs == "" {
		fmt.Printf("No instance ids given, skipping instance update\n")
		return
	}

	outcome, err := vmssops.NewOrchestrator(client).
		UpdateInstances(ctx, resourceGroup, name, instanceIDs, envvars.FromEnviron(os.Environ()))
	require.NoError(t, err)
	require.True(t, outcome.Succeeded(), "failed to update instances: %s", outcome.Message)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
