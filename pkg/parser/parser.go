// Package parser reads and writes the YAML files describing scale set jobs
// and the service principals they run with.
package parser

import (
	"io/ioutil"

	"github.com/libopenstorage/vmssops"
	"gopkg.in/yaml.v2"
)

// JobSpec describes one operation on a scale set.
type JobSpec struct {
	// AzureCredentialsID names the service principal in a CredentialStore.
	AzureCredentialsID string `yaml:"azureCredentialsId,omitempty"`
	// ResourceGroup is the resource group of the scale set.
	ResourceGroup string `yaml:"resourceGroup"`
	// Name is the name of the scale set.
	Name string `yaml:"name"`
	// ImageReference is the desired image, used by image updates.
	ImageReference *vmssops.ImageSpec `yaml:"imageReference,omitempty"`
	// InstanceIDs is the comma separated instance id list, used by
	// instance updates. It may contain ${name} placeholders.
	InstanceIDs string `yaml:"instanceIds,omitempty"`

	// imageErr is the result of ValidateImageFields on the decoded
	// imageReference fields.
	imageErr error
}

type imageFields struct {
	ID        string `yaml:"id"`
	Publisher string `yaml:"publisher"`
	Offer     string `yaml:"offer"`
	SKU       string `yaml:"sku"`
	Version   string `yaml:"version"`
}

// UnmarshalYAML decodes the job and keeps the validation result of the raw
// imageReference fields, which ImageSpec drops when both variants are set.
func (j *JobSpec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain JobSpec
	if err := unmarshal((*plain)(j)); err != nil {
		return err
	}

	var raw struct {
		ImageReference *imageFields           `yaml:"imageReference"`
		Rest           map[string]interface{} `yaml:",inline"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if f := raw.ImageReference; f != nil {
		j.imageErr = vmssops.ValidateImageFields(f.ID, f.Publisher, f.Offer, f.SKU, f.Version)
	}
	return nil
}

// SetImageReference replaces the image of the job.
func (j *JobSpec) SetImageReference(image vmssops.ImageSpec) {
	j.ImageReference = &image
	j.imageErr = nil
}

// Validate checks that the scale set is identified.
func (j *JobSpec) Validate() error {
	if vmssops.IsBlank(j.ResourceGroup) {
		return &vmssops.ErrInvalidConfig{Field: "resourceGroup"}
	}
	if vmssops.IsBlank(j.Name) {
		return &vmssops.ErrInvalidConfig{Field: "name"}
	}
	return nil
}

// ValidateUpdate checks the job can be used for an image update.
func (j *JobSpec) ValidateUpdate() error {
	if err := j.Validate(); err != nil {
		return err
	}
	if j.imageErr != nil {
		return j.imageErr
	}
	if j.ImageReference == nil || j.ImageReference.IsBlank() {
		return &vmssops.ErrInvalidConfig{Field: "imageReference"}
	}
	return nil
}

// ValidateUpdateInstances checks the job can be used for an instance update.
func (j *JobSpec) ValidateUpdateInstances() error {
	if err := j.Validate(); err != nil {
		return err
	}
	if vmssops.IsBlank(j.InstanceIDs) {
		return &vmssops.ErrInvalidConfig{Field: "instanceIds"}
	}
	return nil
}

// ServicePrincipal holds the credentials of an Azure service principal.
type ServicePrincipal struct {
	SubscriptionID          string `yaml:"subscriptionId"`
	ClientID                string `yaml:"clientId"`
	ClientSecret            string `yaml:"clientSecret"`
	Tenant                  string `yaml:"tenant"`
	AuthenticationEndpoint  string `yaml:"authenticationEndpoint,omitempty"`
	ResourceManagerEndpoint string `yaml:"resourceManagerEndpoint,omitempty"`
}

// CredentialStore maps credential ids to service principals.
type CredentialStore struct {
	Credentials map[string]ServicePrincipal `yaml:"credentials"`
}

// Lookup returns the service principal stored under id.
func (s *CredentialStore) Lookup(id string) (*ServicePrincipal, error) {
	if vmssops.IsBlank(id) {
		return nil, &vmssops.ErrInvalidConfig{Field: "azureCredentialsId"}
	}
	sp, ok := s.Credentials[id]
	if !ok {
		return nil, &ErrCredentialsNotFound{ID: id}
	}
	if vmssops.IsBlank(sp.SubscriptionID) {
		return nil, &vmssops.ErrInvalidConfig{Field: "credentials." + id + ".subscriptionId"}
	}
	return &sp, nil
}

// ErrCredentialsNotFound is returned when a credential id is not in the store.
type ErrCredentialsNotFound struct {
	ID string
}

func (e *ErrCredentialsNotFound) Error() string {
	return "credentials " + e.ID + " not found"
}

// JobSpecParser reads and writes job specs
type JobSpecParser interface {
	// MarshalToYaml writes the job spec to the file at filePath
	MarshalToYaml(spec *JobSpec, filePath string) error
	// UnmarshalFromYaml reads a job spec from the file at filePath
	UnmarshalFromYaml(filePath string) (*JobSpec, error)
	// MarshalToBytes returns the yaml encoding of the job spec
	MarshalToBytes(spec *JobSpec) ([]byte, error)
	// UnmarshalFromBytes decodes a yaml job spec
	UnmarshalFromBytes(data []byte) (*JobSpec, error)
}

// CredentialStoreParser reads and writes credential stores
type CredentialStoreParser interface {
	// MarshalToYaml writes the store to the file at filePath
	MarshalToYaml(store *CredentialStore, filePath string) error
	// UnmarshalFromYaml reads a store from the file at filePath
	UnmarshalFromYaml(filePath string) (*CredentialStore, error)
}

// NewJobSpecParser returns a JobSpecParser
func NewJobSpecParser() JobSpecParser {
	return &jobSpecParser{}
}

// NewCredentialStoreParser returns a CredentialStoreParser
func NewCredentialStoreParser() CredentialStoreParser {
	return &credentialStoreParser{}
}

type jobSpecParser struct{}

func (j *jobSpecParser) MarshalToYaml(spec *JobSpec, filePath string) error {
	return marshalToYaml(spec, filePath)
}

func (j *jobSpecParser) UnmarshalFromYaml(filePath string) (*JobSpec, error) {
	spec := &JobSpec{}
	if err := unmarshalFromYaml(filePath, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func (j *jobSpecParser) MarshalToBytes(spec *JobSpec) ([]byte, error) {
	return yaml.Marshal(spec)
}

func (j *jobSpecParser) UnmarshalFromBytes(data []byte) (*JobSpec, error) {
	spec := &JobSpec{}
	if err := yaml.UnmarshalStrict(data, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

type credentialStoreParser struct{}

func (c *credentialStoreParser) MarshalToYaml(store *CredentialStore, filePath string) error {
	return marshalToYaml(store, filePath)
}

func (c *credentialStoreParser) UnmarshalFromYaml(filePath string) (*CredentialStore, error) {
	store := &CredentialStore{}
	if err := unmarshalFromYaml(filePath, store); err != nil {
		return nil, err
	}
	return store, nil
}

func marshalToYaml(in interface{}, filePath string) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filePath, data, 0600)
}

func unmarshalFromYaml(filePath string, out interface{}) error {
	data, err := ioutil.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, out)
}
