package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type CatalogServiceType struct {
	Value       string `yaml:"value" json:"value" validate:"required,oneof=mentorship_session mock_interview mentorship_plan group_mentorship"`
	Label       string `yaml:"label" json:"label" validate:"required"`
	RequestType string `yaml:"requestType" json:"request_type" validate:"required,oneof=one_to_one group plan"`
}

// Catalog lists the enumerations clients render. It is read once at startup.
type Catalog struct {
	ServiceTypes    []CatalogServiceType `yaml:"serviceTypes" json:"service_types" validate:"required,min=1,dive"`
	RequestStatuses []string             `yaml:"requestStatuses" json:"request_statuses" validate:"required,dive,oneof=pending accepted rejected cancelled"`
	SessionStatuses []string             `yaml:"sessionStatuses" json:"session_statuses" validate:"required,dive,oneof=pending scheduled completed cancelled"`
	Roles           []string             `yaml:"roles" json:"roles" validate:"required,dive,oneof=trainee coach"`
	Weekdays        []string             `yaml:"weekdays" json:"weekdays" validate:"len=7,dive,required"`
}

var validate = validator.New()

// LoadCatalog reads the catalog at path, or the embedded default when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		data = raw
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := validate.Struct(&catalog); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}
	for i, name := range catalog.Weekdays {
		if !strings.EqualFold(name, time.Weekday(i).String()) {
			return nil, fmt.Errorf("catalog weekdays[%d] must be %s, got %q", i, time.Weekday(i), name)
		}
	}
	return &catalog, nil
}

// ParseWeekday accepts an English day name or its three letter prefix, in any case.
func (c *Catalog) ParseWeekday(name string) (time.Weekday, error) {
	name = strings.TrimSpace(name)
	for i, day := range c.Weekdays {
		if strings.EqualFold(day, name) || (len(name) == 3 && strings.EqualFold(day[:3], name)) {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
