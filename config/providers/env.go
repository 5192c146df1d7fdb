package providers

import (
	"reflect"

	"github.com/creasty/defaults"
	"github.com/kelseyhightower/envconfig"
)

// EnvProvider overrides configuration values from environment variables
// named PREFIX_MODULE_FIELD, e.g. EVENTSVC_DATABASE_DRIVER.
type EnvProvider struct {
	prefix string
}

func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// Load applies only the variables that are set. envconfig falls back to
// the default tag for unset variables, so values are read into a fresh copy
// and only the fields that differ from a defaults-only copy are applied.
func (p *EnvProvider) Load(cfg any) error {
	dst := reflect.ValueOf(cfg)
	if dst.Kind() != reflect.Ptr || dst.Elem().Kind() != reflect.Struct {
		return envconfig.ErrInvalidSpecification
	}
	t := dst.Elem().Type()

	base := reflect.New(t)
	if err := defaults.Set(base.Interface()); err != nil {
		return err
	}
	env := reflect.New(t)
	if err := defaults.Set(env.Interface()); err != nil {
		return err
	}
	if err := envconfig.Process(p.prefix, env.Interface()); err != nil {
		return err
	}

	overlay(dst.Elem(), env.Elem(), base.Elem())
	return nil
}

func overlay(dst, env, base reflect.Value) {
	if dst.Kind() == reflect.Struct {
		for i := 0; i < dst.NumField(); i++ {
			if !dst.Field(i).CanSet() {
				continue
			}
			overlay(dst.Field(i), env.Field(i), base.Field(i))
		}
		return
	}
	if !reflect.DeepEqual(env.Interface(), base.Interface()) {
		dst.Set(env)
	}
}
