package vmssops

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/golang/mock/gomock"
	"github.com/libopenstorage/vmssops/mock"
	"github.com/stretchr/testify/require"
)

func TestIsCustomImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockScaleSetClient(ctrl)
	client.EXPECT().Get(gomock.Any(), "rg", "custom").
		Return(newScaleSet("1", &armcompute.ImageReference{ID: to.StringPtr("image-1")}), nil)
	client.EXPECT().Get(gomock.Any(), "rg", "marketplace").
		Return(newScaleSet("2", &armcompute.ImageReference{Publisher: to.StringPtr("Canonical")}), nil)
	client.EXPECT().Get(gomock.Any(), "rg", "bare").
		Return(&armcompute.VirtualMachineScaleSet{}, nil)
	client.EXPECT().Get(gomock.Any(), "rg", "missing").Return(nil, ErrResourceNotFound)
	client.EXPECT().Get(gomock.Any(), "rg", "broken").Return(nil, errors.New("boom"))

	ctx := context.Background()

	custom, err := IsCustomImage(ctx, client, "rg", "custom")
	require.NoError(t, err)
	require.True(t, custom)

	custom, err = IsCustomImage(ctx, client, "rg", "marketplace")
	require.NoError(t, err)
	require.False(t, custom)

	custom, err = IsCustomImage(ctx, client, "rg", "bare")
	require.NoError(t, err)
	require.False(t, custom)

	custom, err = IsCustomImage(ctx, client, "rg", "missing")
	require.NoError(t, err)
	require.False(t, custom)

	_, err = IsCustomImage(ctx, client, "rg", "broken")
	require.Error(t, err)

	custom, err = IsCustomImage(ctx, client, "", "custom")
	require.NoError(t, err)
	require.False(t, custom)
}
