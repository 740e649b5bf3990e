//go:generate mockgen --package=mock -destination=mock/scaleset_client.mock.go github.com/libopenstorage/vmssops ScaleSetClient

package vmssops

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute"
)

// ScaleSetClient is the set of cloud operations the orchestrator needs on a
// virtual machine scale set. Implementations are constructed and
// authenticated by the caller.
type ScaleSetClient interface {
	// Get returns the scale set with the given name. If it does not exist the
	// returned error matches ErrResourceNotFound. A nil scale set with a nil
	// error is treated as not found.
	Get(ctx context.Context, resourceGroup, name string) (*armcompute.VirtualMachineScaleSet, error)
	// CreateOrUpdate submits the complete scale set resource body and waits
	// for the provider to accept it.
	CreateOrUpdate(ctx context.Context, resourceGroup, name string, vmss *armcompute.VirtualMachineScaleSet) error
	// UpdateInstances upgrades the given instances to the latest scale set
	// model in one batch request.
	UpdateInstances(ctx context.Context, resourceGroup, name string, instanceIDs []string) error
}

// Expander resolves variable placeholders in configuration text.
type Expander interface {
	// Expand returns text with every resolvable placeholder substituted.
	// Placeholders without a value are left as they are.
	Expand(text string) string
}

// Event names an orchestration milestone reported to observers.
type Event string

const (
	// EventUpdateStart is sent before the scale set image is updated.
	EventUpdateStart Event = "UpdateStart"
	// EventUpdateSuccess is sent when the scale set image update succeeded.
	EventUpdateSuccess Event = "UpdateSuccess"
	// EventUpdateFailed is sent when the scale set image update failed.
	EventUpdateFailed Event = "UpdateFailed"
	// EventUpdateCancelled is sent when the context of an image update is
	// done before the update finished.
	EventUpdateCancelled Event = "UpdateCancelled"
	// EventUpdateInstancesStart is sent before instances are updated.
	EventUpdateInstancesStart Event = "UpdateInstancesStart"
	// EventUpdateInstancesSuccess is sent when the instance update succeeded.
	EventUpdateInstancesSuccess Event = "UpdateInstancesSuccess"
	// EventUpdateInstancesFailed is sent when the instance update failed.
	EventUpdateInstancesFailed Event = "UpdateInstancesFailed"
	// EventUpdateInstancesCancelled is sent when the context of an instance
	// update is done before the update finished.
	EventUpdateInstancesCancelled Event = "UpdateInstancesCancelled"
)

// Keys of the properties map passed to observers.
const (
	PropertyRunID         = "Run"
	PropertyResourceGroup = "ResourceGroup"
	PropertyName          = "Name"
	PropertyInstanceCount = "InstanceCount"
	PropertyMessage       = "Message"
)

// Observer is notified of orchestration events.
type Observer interface {
	Notify(event Event, properties map[string]string)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event Event, properties map[string]string)

// Notify calls f(event, properties).
func (f ObserverFunc) Notify(event Event, properties map[string]string) {
	f(event, properties)
}
