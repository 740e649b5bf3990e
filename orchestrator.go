package vmssops

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OutcomeStatus is the terminal status of one orchestrated operation.
type OutcomeStatus int

const (
	// Success means the provider accepted the request.
	Success OutcomeStatus = iota
	// ResourceNotFound means the target scale set does not exist.
	ResourceNotFound
	// ProviderError means the provider rejected the request.
	ProviderError
)

func (s OutcomeStatus) String() string {
	switch s {
	case Success:
		return "Success"
	case ResourceNotFound:
		return "ResourceNotFound"
	case ProviderError:
		return "ProviderError"
	default:
		return "OutcomeStatus(" + strconv.Itoa(int(s)) + ")"
	}
}

// Outcome is the result of an orchestrated operation.
type Outcome struct {
	Status OutcomeStatus
	// Message is the failure message, empty on success.
	Message string
	err     error
}

// Succeeded returns true if the operation was accepted by the provider.
func (o Outcome) Succeeded() bool {
	return o.Status == Success
}

// Err returns nil on success, an error matching ErrResourceNotFound if the
// scale set does not exist and an *ErrProvider otherwise.
func (o Outcome) Err() error {
	return o.err
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger progress lines are written to.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithObserver adds an observer notified of every orchestration event.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, observer)
	}
}

// Orchestrator updates the image of a scale set and the instances running in it.
type Orchestrator struct {
	client    ScaleSetClient
	logger    logrus.FieldLogger
	observers []Observer
}

// NewOrchestrator returns an orchestrator issuing its requests through client.
func NewOrchestrator(client ScaleSetClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// UpdateImage fetches the scale set, merges desired into its image
// reference with ApplyImage and submits the whole resource back. The
// provider is called at most once for the update and failures are not
// retried.
//
// The returned error is only set when ctx is done, in which case
// EventUpdateCancelled is sent; every other failure is reported through the
// Outcome.
func (o *Orchestrator) UpdateImage(
	ctx context.Context,
	resourceGroup, name string,
	desired ImageSpec,
	env Expander,
) (Outcome, error) {
	env = expanderOrNoop(env)
	runID := uuid.New().String()
	log := o.runLogger(runID, resourceGroup, name)
	props := newProperties(runID, resourceGroup, name)

	log.Infof("Starting update of scale set %s in resource group %s", name, resourceGroup)
	o.notify(EventUpdateStart, props)

	vmss, err := o.client.Get(ctx, resourceGroup, name)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.cancelled(log, EventUpdateCancelled, props, ctxErr)
		}
		if errors.Is(err, ErrResourceNotFound) {
			return o.notFound(log, props, resourceGroup, name), nil
		}
		return o.providerFailure(log, EventUpdateFailed, props, "get scale set", err), nil
	}
	if vmss == nil {
		return o.notFound(log, props, resourceGroup, name), nil
	}

	imageRef := ImageReference(vmss)
	log.Infof("Current image reference: %s", FormatImageReference(imageRef))

	ApplyImage(desired, imageRef, env)
	log.Infof("New image reference: %s", FormatImageReference(imageRef))

	if err := o.client.CreateOrUpdate(ctx, resourceGroup, name, vmss); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.cancelled(log, EventUpdateCancelled, props, ctxErr)
		}
		return o.providerFailure(log, EventUpdateFailed, props, "update scale set", err), nil
	}

	log.Infof("Scale set %s updated", name)
	o.notify(EventUpdateSuccess, props)
	return Outcome{Status: Success}, nil
}

// UpdateInstances expands rawInstanceIDs, splits it with ParseInstanceIDs
// and asks the provider to upgrade all listed instances in a single batch.
// Whether the scale set exists is left to the provider call.
//
// The returned error is only set when ctx is done, in which case
// EventUpdateInstancesCancelled is sent.
func (o *Orchestrator) UpdateInstances(
	ctx context.Context,
	resourceGroup, name string,
	rawInstanceIDs string,
	env Expander,
) (Outcome, error) {
	env = expanderOrNoop(env)
	runID := uuid.New().String()
	log := o.runLogger(runID, resourceGroup, name)

	log.Infof("Starting update of instances in scale set %s in resource group %s", name, resourceGroup)

	resolved := env.Expand(rawInstanceIDs)
	log.Infof("Instance IDs: %s", resolved)

	instanceIDs := ParseInstanceIDs(resolved)
	props := newProperties(runID, resourceGroup, name).
		with(PropertyInstanceCount, strconv.Itoa(len(instanceIDs)))
	o.notify(EventUpdateInstancesStart, props)

	if err := o.client.UpdateInstances(ctx, resourceGroup, name, instanceIDs); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.cancelled(log, EventUpdateInstancesCancelled, props, ctxErr)
		}
		return o.providerFailure(log, EventUpdateInstancesFailed, props, "update instances", err), nil
	}

	log.Infof("Updated %d instance(s) of scale set %s", len(instanceIDs), name)
	o.notify(EventUpdateInstancesSuccess, props)
	return Outcome{Status: Success}, nil
}

func (o *Orchestrator) notFound(log logrus.FieldLogger, props properties, resourceGroup, name string) Outcome {
	outcome := Outcome{
		Status:  ResourceNotFound,
		Message: fmt.Sprintf("scale set %s not found in resource group %s", name, resourceGroup),
		err:     fmt.Errorf("%w: %s/%s", ErrResourceNotFound, resourceGroup, name),
	}
	log.Errorf("Scale set %s not found in resource group %s", name, resourceGroup)
	o.notify(EventUpdateFailed, props.with(PropertyMessage, outcome.Message))
	return outcome
}

// cancelled sends the terminal event of a run whose context is done.
func (o *Orchestrator) cancelled(
	log logrus.FieldLogger,
	event Event,
	props properties,
	ctxErr error,
) (Outcome, error) {
	log.Warnf("Cancelled: %v", ctxErr)
	o.notify(event, props.with(PropertyMessage, ctxErr.Error()))
	return Outcome{}, ctxErr
}

func (o *Orchestrator) providerFailure(
	log logrus.FieldLogger,
	event Event,
	props properties,
	op string,
	err error,
) Outcome {
	providerErr := &ErrProvider{Op: op, Err: err}
	log.Errorf("Failed to %s: %v", op, err)
	o.notify(event, props.with(PropertyMessage, err.Error()))
	return Outcome{
		Status:  ProviderError,
		Message: err.Error(),
		err:     providerErr,
	}
}

func (o *Orchestrator) runLogger(runID, resourceGroup, name string) logrus.FieldLogger {
	return o.logger.WithFields(logrus.Fields{
		"runID":         runID,
		"resourceGroup": resourceGroup,
		"name":          name,
	})
}

func (o *Orchestrator) notify(event Event, props properties) {
	for _, observer := range o.observers {
		observer.Notify(event, props.copy())
	}
}

type properties map[string]string

func newProperties(runID, resourceGroup, name string) properties {
	return properties{
		PropertyRunID:         runID,
		PropertyResourceGroup: resourceGroup,
		PropertyName:          name,
	}
}

// with returns a copy of p with key set to value.
func (p properties) with(key, value string) properties {
	c := p.copy()
	c[key] = value
	return c
}

func (p properties) copy() properties {
	c := make(properties, len(p)+1)
	for k, v := range p {
		c[k] = v
	}
	return c
}

type noopExpander struct{}

func (noopExpander) Expand(text string) string { return text }

func expanderOrNoop(env Expander) Expander {
	if env == nil {
		return noopExpander{}
	}
	return env
}
