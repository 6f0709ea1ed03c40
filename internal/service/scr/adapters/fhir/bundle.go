// Package fhir assembles the canonical GP Summary record from a submitted
// resource-graph bundle, and offers arena-style lookups over bundle entries.
package fhir

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

// DomainResource finds exactly one resource of the given type in the bundle.
// Zero instances is a MissingEntityError, more than one a DuplicateEntityError.
func DomainResource[T model.Resource](bundle *model.Bundle, resourceType string) (T, error) {
	var found T
	var zero T
	count := 0
	for _, entry := range bundle.Entry {
		if entry.Resource == nil || entry.Resource.GetResourceType() != resourceType {
			continue
		}
		typed, ok := entry.Resource.(T)
		if !ok {
			continue
		}
		found = typed
		count++
	}
	switch {
	case count == 0:
		return zero, exceptions.MissingEntityError{ResourceType: resourceType}
	case count > 1:
		return zero, exceptions.DuplicateEntityError{ResourceType: resourceType}
	}
	return found, nil
}

// ResourcesOfType returns every resource of the given type, in entry order.
func ResourcesOfType(bundle *model.Bundle, resourceType string) []model.Resource {
	var out []model.Resource
	for _, entry := range bundle.Entry {
		if entry.Resource != nil && entry.Resource.GetResourceType() == resourceType {
			out = append(out, entry.Resource)
		}
	}
	return out
}

// Resolve looks a reference up in the bundle arena. References may be entry
// fullUrls (urn:uuid form) or Type/id literals. Returns nil when the
// reference points at nothing in this bundle.
func Resolve(bundle *model.Bundle, ref model.Reference) model.Resource {
	if ref.Reference == "" {
		return nil
	}
	for _, entry := range bundle.Entry {
		if entry.Resource == nil {
			continue
		}
		if entry.FullURL != "" && entry.FullURL == ref.Reference {
			return entry.Resource
		}
		local := entry.Resource.GetResourceType() + "/" + entry.Resource.GetID()
		if local == ref.Reference {
			return entry.Resource
		}
		if ref.Reference == "urn:uuid:"+entry.Resource.GetID() {
			return entry.Resource
		}
	}
	return nil
}
