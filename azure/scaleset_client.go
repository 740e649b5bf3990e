package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/libopenstorage/vmssops"
	"github.com/sirupsen/logrus"
)

const clientPollingDelay = 10 * time.Second

type scaleSetClient struct {
	client *armcompute.VirtualMachineScaleSetsClient
}

func (s *scaleSetClient) Get(
	ctx context.Context,
	resourceGroupName string,
	scaleSetName string,
) (*armcompute.VirtualMachineScaleSet, error) {
	resp, err := s.client.Get(ctx, resourceGroupName, scaleSetName, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s/%s", vmssops.ErrResourceNotFound, resourceGroupName, scaleSetName)
		}
		return nil, err
	}
	return &resp.VirtualMachineScaleSet, nil
}

func (s *scaleSetClient) CreateOrUpdate(
	ctx context.Context,
	resourceGroupName string,
	scaleSetName string,
	vmss *armcompute.VirtualMachineScaleSet,
) error {
	poller, err := s.client.BeginCreateOrUpdate(
		ctx,
		resourceGroupName,
		scaleSetName,
		*vmss,
		nil,
	)
	if err != nil {
		return err
	}

	logrus.Debugf("Waiting for update of scale set %s to complete", scaleSetName)
	_, err = poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: clientPollingDelay})
	return err
}

func (s *scaleSetClient) UpdateInstances(
	ctx context.Context,
	resourceGroupName string,
	scaleSetName string,
	instanceIDs []string,
) error {
	poller, err := s.client.BeginUpdateInstances(
		ctx,
		resourceGroupName,
		scaleSetName,
		requiredInstanceIDs(instanceIDs),
		nil,
	)
	if err != nil {
		return err
	}

	logrus.Debugf("Waiting for update of %d instance(s) in scale set %s to complete", len(instanceIDs), scaleSetName)
	_, err = poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: clientPollingDelay})
	return err
}

func requiredInstanceIDs(instanceIDs []string) armcompute.VirtualMachineScaleSetVMInstanceRequiredIDs {
	ids := make([]*string, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		ids = append(ids, to.StringPtr(id))
	}
	return armcompute.VirtualMachineScaleSetVMInstanceRequiredIDs{InstanceIDs: ids}
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
