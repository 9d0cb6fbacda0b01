package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	DefaultMinCodeLength = 8
	DefaultCodeLength    = 8
	DefaultCodeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// EnrollmentPolicy controls who may redeem invitation codes and how new codes look.
type EnrollmentPolicy struct {
	Open          bool   `mapstructure:"open"`
	MinCodeLength int    `mapstructure:"minCodeLength"`
	CodeLength    int    `mapstructure:"codeLength"`
	CodeAlphabet  string `mapstructure:"codeAlphabet"`
}

func DefaultEnrollmentPolicy() EnrollmentPolicy {
	return EnrollmentPolicy{
		Open:          true,
		MinCodeLength: DefaultMinCodeLength,
		CodeLength:    DefaultCodeLength,
		CodeAlphabet:  DefaultCodeAlphabet,
	}
}

// EnrollmentPolicySource returns the policy in effect right now.
type EnrollmentPolicySource interface {
	Get() EnrollmentPolicy
}

type EnrollmentPolicyHolder struct {
	current atomic.Value // holds EnrollmentPolicy
}

// NewEnrollmentPolicyHolder reads enrollment.yml from the usual config paths and
// keeps it fresh while the process runs.
func NewEnrollmentPolicyHolder() (*EnrollmentPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("enrollment")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/paws/config")
	v.AddConfigPath("/etc/paws")
	v.AddConfigPath(".")

	return newEnrollmentPolicyHolder(v, true)
}

// LoadEnrollmentPolicyFile reads a single policy file without watching it.
func LoadEnrollmentPolicyFile(path string) (*EnrollmentPolicyHolder, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return newEnrollmentPolicyHolder(v, false)
}

// NewStaticEnrollmentPolicy wraps a fixed policy.
func NewStaticEnrollmentPolicy(policy EnrollmentPolicy) *EnrollmentPolicyHolder {
	holder := &EnrollmentPolicyHolder{}
	holder.current.Store(normalizeEnrollmentPolicy(policy))
	return holder
}

func newEnrollmentPolicyHolder(v *viper.Viper, watch bool) (*EnrollmentPolicyHolder, error) {
	v.SetEnvPrefix("PAWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultEnrollmentPolicy()
	v.SetDefault("enrollment.open", defaults.Open)
	v.SetDefault("enrollment.minCodeLength", defaults.MinCodeLength)
	v.SetDefault("enrollment.codeLength", defaults.CodeLength)
	v.SetDefault("enrollment.codeAlphabet", defaults.CodeAlphabet)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	policy, err := decodeEnrollmentPolicy(v)
	if err != nil {
		return nil, err
	}

	holder := &EnrollmentPolicyHolder{}
	holder.current.Store(policy)

	if watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeEnrollmentPolicy(v)
			if err != nil {
				log.Printf("[enrollment-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[enrollment-config] reloaded from %s", e.Name)
		})
		v.WatchConfig()
	}

	return holder, nil
}

func (h *EnrollmentPolicyHolder) Get() EnrollmentPolicy {
	if h == nil {
		return DefaultEnrollmentPolicy()
	}
	policy, ok := h.current.Load().(EnrollmentPolicy)
	if !ok {
		return DefaultEnrollmentPolicy()
	}
	return policy
}

func decodeEnrollmentPolicy(v *viper.Viper) (EnrollmentPolicy, error) {
	var policy EnrollmentPolicy
	if err := v.UnmarshalKey("enrollment", &policy); err != nil {
		return EnrollmentPolicy{}, err
	}
	policy = normalizeEnrollmentPolicy(policy)
	if err := validateEnrollmentPolicy(policy); err != nil {
		return EnrollmentPolicy{}, err
	}
	return policy, nil
}

func normalizeEnrollmentPolicy(policy EnrollmentPolicy) EnrollmentPolicy {
	if policy.MinCodeLength <= 0 {
		policy.MinCodeLength = DefaultMinCodeLength
	}
	if policy.CodeLength <= 0 {
		policy.CodeLength = DefaultCodeLength
	}
	if strings.TrimSpace(policy.CodeAlphabet) == "" {
		policy.CodeAlphabet = DefaultCodeAlphabet
	}
	return policy
}

func validateEnrollmentPolicy(policy EnrollmentPolicy) error {
	if policy.CodeLength < policy.MinCodeLength {
		return errors.New("enrollment.codeLength must not be shorter than enrollment.minCodeLength")
	}
	if len(policy.CodeAlphabet) < 2 {
		return errors.New("enrollment.codeAlphabet needs at least two characters")
	}
	return nil
}
