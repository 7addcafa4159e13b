package resource

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadDomain reads the resource domain from a YAML file of the shape:
//
//	domain:
//	  contacts:
//	    schema:
//	      name: {type: string, required: true, unique: true}
//	      born: {type: datetime}
//	      status: {type: string, default: active}
//	    auth_field: owner
func LoadDomain(path string) (Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read domain file: %w", err)
	}
	var reg Registry
	if err := v.UnmarshalKey("domain", &reg); err != nil {
		return nil, fmt.Errorf("parse domain: %w", err)
	}
	for name, def := range reg {
		if def == nil {
			return nil, fmt.Errorf("resource %q: empty definition", name)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("resource %q: %w", name, err)
		}
	}
	return reg, nil
}
