package agent

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be deserialized.
var registeredTypes map[Type]reflect.Type

func init() {
	registeredTypes = make(map[Type]reflect.Type)
	Register(RandomType, RandomConfig{})
	Register(GoalSeekerType, GoalSeekerConfig{})
}

// Register registers an agent's Type with a concrete Config type so
// that upon deserialization of a TypedConfig, Configs of type
// agentType are deserialized into the concrete type.
func Register(agentType Type, config Config) {
	registeredTypes[agentType] = reflect.TypeOf(config)
}

// TypedConfig implements functionality for typing a Config. In this
// way, a Config can explicitly have its type stored so that when
// deserializing the Config, we can deserialize it into its concrete
// type without knowing beforehand or declaring beforehand a variable
// of its concrete type.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config and returns it as a
// TypedConfig which explicitly holds its Type
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// DefaultTypedConfig returns the default Config of a registered Type
func DefaultTypedConfig(agentType Type) (TypedConfig, error) {
	ty, found := registeredTypes[agentType]
	if !found {
		return TypedConfig{}, errors.Errorf("defaultTypedConfig: no such "+
			"agent type %q", agentType)
	}
	config := reflect.Zero(ty).Interface().(Config)
	return TypedConfig{Type: agentType, Config: config}, nil
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(data, "Type", "Config")
	if err != nil {
		return err
	}

	t.Type = typeName
	t.Config = config

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJSONField,
	valueJSONField string) (Config, Type, error) {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", errors.Wrap(err, "unmarshalConfig")
	}

	var typeName Type
	if err := json.Unmarshal(m[typeJSONField], &typeName); err != nil {
		return nil, "", errors.Wrap(err, "unmarshalConfig: missing type")
	}

	ty, found := registeredTypes[typeName]
	if !found {
		return nil, "", errors.Errorf("unmarshalConfig: no such agent "+
			"type %q", typeName)
	}

	value := reflect.New(ty)
	if raw, ok := m[valueJSONField]; ok {
		if err := json.Unmarshal(raw, value.Interface()); err != nil {
			return nil, "", errors.Wrap(err, "unmarshalConfig")
		}
	}

	return value.Elem().Interface().(Config), typeName, nil
}
