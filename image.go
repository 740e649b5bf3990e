package vmssops

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute"
	"github.com/Azure/go-autorest/autorest/to"
)

const imageReferenceField = "imageReference"

// ImageKind discriminates the two ways a scale set image can be selected.
type ImageKind string

const (
	// ImageKindCustom selects a disk image by resource id.
	ImageKindCustom ImageKind = "custom"
	// ImageKindMarketplace selects a publisher/offer/sku/version image.
	ImageKindMarketplace ImageKind = "marketplace"
)

// ImageSpec is the desired image reference of a scale set. It is either a
// custom image (ID) or a marketplace image (publisher, offer, sku, version),
// never both. Values may contain ${name} placeholders which are resolved
// when the image is applied.
type ImageSpec struct {
	kind      ImageKind
	id        string
	publisher string
	offer     string
	sku       string
	version   string
}

// NewCustomImage returns a custom image spec.
func NewCustomImage(id string) ImageSpec {
	return ImageSpec{kind: ImageKindCustom, id: id}
}

// NewMarketplaceImage returns a marketplace image spec.
func NewMarketplaceImage(publisher, offer, sku, version string) ImageSpec {
	return ImageSpec{
		kind:      ImageKindMarketplace,
		publisher: publisher,
		offer:     offer,
		sku:       sku,
		version:   version,
	}
}

// NewImageSpec returns a custom image spec if id is not blank and a
// marketplace image spec otherwise. The fields of the other variant are
// dropped.
func NewImageSpec(id, publisher, offer, sku, version string) ImageSpec {
	if !IsBlank(id) {
		return NewCustomImage(id)
	}
	return NewMarketplaceImage(publisher, offer, sku, version)
}

// Kind returns the image variant. The zero value is a marketplace
// image with no fields set.
func (s ImageSpec) Kind() ImageKind {
	if s.kind == "" {
		return ImageKindMarketplace
	}
	return s.kind
}

// IsCustomImage returns true if s selects an image by id.
func (s ImageSpec) IsCustomImage() bool {
	return s.Kind() == ImageKindCustom
}

// ID returns the custom image id, or "" for marketplace images.
func (s ImageSpec) ID() string { return s.id }

// Publisher returns the marketplace publisher, or "" for custom images.
func (s ImageSpec) Publisher() string { return s.publisher }

// Offer returns the marketplace offer, or "" for custom images.
func (s ImageSpec) Offer() string { return s.offer }

// SKU returns the marketplace sku, or "" for custom images.
func (s ImageSpec) SKU() string { return s.sku }

// Version returns the marketplace version, or "" for custom images.
func (s ImageSpec) Version() string { return s.version }

// IsBlank returns true if no field of the spec is set.
func (s ImageSpec) IsBlank() bool {
	return IsBlank(s.id) && IsBlank(s.publisher) && IsBlank(s.offer) &&
		IsBlank(s.sku) && IsBlank(s.version)
}

// ValidateImageFields checks the raw fields of an image before they are
// turned into an ImageSpec with NewImageSpec: at least one field must be set
// and id can not be combined with the marketplace fields.
func ValidateImageFields(id, publisher, offer, sku, version string) error {
	marketplace := !IsBlank(publisher) || !IsBlank(offer) || !IsBlank(sku) || !IsBlank(version)
	if !IsBlank(id) && marketplace {
		return &ErrInvalidConfig{
			Field:  imageReferenceField,
			Reason: "id can not be combined with publisher, offer, sku or version",
		}
	}
	if IsBlank(id) && !marketplace {
		return &ErrInvalidConfig{Field: imageReferenceField}
	}
	return nil
}

func (s ImageSpec) String() string {
	if s.IsCustomImage() {
		return fmt.Sprintf("custom image %q", s.id)
	}
	return fmt.Sprintf("marketplace image %s:%s:%s:%s", s.publisher, s.offer, s.sku, s.version)
}

type imageSpecFields struct {
	ID        string `yaml:"id,omitempty"`
	Publisher string `yaml:"publisher,omitempty"`
	Offer     string `yaml:"offer,omitempty"`
	SKU       string `yaml:"sku,omitempty"`
	Version   string `yaml:"version,omitempty"`
}

// UnmarshalYAML decodes the flat id/publisher/offer/sku/version form and
// derives the kind the same way NewImageSpec does.
func (s *ImageSpec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var f imageSpecFields
	if err := unmarshal(&f); err != nil {
		return err
	}
	*s = NewImageSpec(f.ID, f.Publisher, f.Offer, f.SKU, f.Version)
	return nil
}

// MarshalYAML encodes s in the flat form read by UnmarshalYAML.
func (s ImageSpec) MarshalYAML() (interface{}, error) {
	return imageSpecFields{
		ID:        s.id,
		Publisher: s.publisher,
		Offer:     s.offer,
		SKU:       s.sku,
		Version:   s.version,
	}, nil
}

// LiveImageKind returns the variant the scale set is currently deployed
// with: custom if the live image id is set, marketplace otherwise.
func LiveImageKind(live *armcompute.ImageReference) ImageKind {
	if live != nil && !IsBlank(stringValue(live.ID)) {
		return ImageKindCustom
	}
	return ImageKindMarketplace
}

// ApplyImage merges desired into the live image reference of a scale set
// and returns live. If live is nil a new marketplace record is allocated and
// returned.
//
// The variant is decided by the live record, not by desired: a scale set
// deployed from a custom image only gets its id replaced (with "" if
// desired is a marketplace spec). The marketplace fields are not set in that
// case, so a marketplace spec applied to a custom image scale set leaves a
// record with no image selected, which the provider rejects on submit.
// Otherwise all four marketplace fields are overwritten, with "" for the
// ones desired leaves unset. Every value is expanded through env before it
// is assigned.
func ApplyImage(desired ImageSpec, live *armcompute.ImageReference, env Expander) *armcompute.ImageReference {
	if live == nil {
		live = &armcompute.ImageReference{}
	}
	if LiveImageKind(live) == ImageKindCustom {
		live.ID = to.StringPtr(env.Expand(desired.ID()))
		return live
	}

	live.Publisher = to.StringPtr(env.Expand(desired.Publisher()))
	live.Offer = to.StringPtr(env.Expand(desired.Offer()))
	live.SKU = to.StringPtr(env.Expand(desired.SKU()))
	live.Version = to.StringPtr(env.Expand(desired.Version()))
	return live
}

// ImageReference returns the image reference of the scale set VM profile,
// allocating any missing part of the path so the result can be updated in
// place.
func ImageReference(vmss *armcompute.VirtualMachineScaleSet) *armcompute.ImageReference {
	if vmss.Properties == nil {
		vmss.Properties = &armcompute.VirtualMachineScaleSetProperties{}
	}
	if vmss.Properties.VirtualMachineProfile == nil {
		vmss.Properties.VirtualMachineProfile = &armcompute.VirtualMachineScaleSetVMProfile{}
	}
	profile := vmss.Properties.VirtualMachineProfile
	if profile.StorageProfile == nil {
		profile.StorageProfile = &armcompute.VirtualMachineScaleSetStorageProfile{}
	}
	if profile.StorageProfile.ImageReference == nil {
		profile.StorageProfile.ImageReference = &armcompute.ImageReference{}
	}
	return profile.StorageProfile.ImageReference
}

func retrieveImageReference(vmss *armcompute.VirtualMachineScaleSet) *armcompute.ImageReference {
	if vmss == nil ||
		vmss.Properties == nil ||
		vmss.Properties.VirtualMachineProfile == nil ||
		vmss.Properties.VirtualMachineProfile.StorageProfile == nil {
		return nil
	}
	return vmss.Properties.VirtualMachineProfile.StorageProfile.ImageReference
}

// FormatImageReference renders an image reference for log output.
func FormatImageReference(ref *armcompute.ImageReference) string {
	if ref == nil {
		return "<none>"
	}
	return fmt.Sprintf("id: %q, publisher: %q, offer: %q, sku: %q, version: %q",
		stringValue(ref.ID),
		stringValue(ref.Publisher),
		stringValue(ref.Offer),
		stringValue(ref.SKU),
		stringValue(ref.Version))
}
