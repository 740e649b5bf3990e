package vmssops

import (
	"context"
	"errors"
)

// IsCustomImage reports whether the scale set is currently deployed from a
// custom image. It returns false without calling the provider if
// resourceGroup or name is blank, and false if the scale set does not exist.
func IsCustomImage(ctx context.Context, client ScaleSetClient, resourceGroup, name string) (bool, error) {
	if IsBlank(resourceGroup) || IsBlank(name) {
		return false, nil
	}

	vmss, err := client.Get(ctx, resourceGroup, name)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}
	return LiveImageKind(retrieveImageReference(vmss)) == ImageKindCustom, nil
}
