package gcp

import (
	"fmt"
	"strings"
)

// HealthcareEndpoint is the base URL of the Cloud Healthcare API.
const HealthcareEndpoint = "https://healthcare.googleapis.com/v1"

// DICOMStore identifies a Cloud Healthcare DICOM store.
type DICOMStore struct {
	Project  string
	Location string
	Dataset  string
	Store    string
}

// URL returns the DICOMweb base URL of the store.
func (d DICOMStore) URL() (string, error) {
	parts := []struct{ name, value string }{
		{"project", d.Project},
		{"location", d.Location},
		{"dataset", d.Dataset},
		{"store", d.Store},
	}
	for _, p := range parts {
		if strings.TrimSpace(p.value) == "" {
			return "", fmt.Errorf("gcp: dicom store %s is required", p.name)
		}
		if strings.Contains(p.value, "/") {
			return "", fmt.Errorf("gcp: dicom store %s must not contain '/': %q", p.name, p.value)
		}
	}
	return fmt.Sprintf("%s/projects/%s/locations/%s/datasets/%s/dicomStores/%s/dicomWeb",
		HealthcareEndpoint, d.Project, d.Location, d.Dataset, d.Store), nil
}
