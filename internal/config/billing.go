package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingPolicy carries the tunable billing rules. Values apply at the next
// sweep or request; no restart required.
type BillingPolicy struct {
	LateFeePercent        float64 `mapstructure:"lateFeePercent"`
	LateFeeMinimum        int64   `mapstructure:"lateFeeMinimum"`
	GraceDays             int     `mapstructure:"graceDays"`
	AutopayProviderPrefix string  `mapstructure:"autopayProviderPrefix"`
	MaxRentMultiplier     int64   `mapstructure:"maxRentMultiplier"`
}

func DefaultBillingPolicy() BillingPolicy {
	return BillingPolicy{
		LateFeePercent:        0.05,
		LateFeeMinimum:        25,
		GraceDays:             5,
		AutopayProviderPrefix: "autopay",
		MaxRentMultiplier:     3,
	}
}

type BillingPolicyHolder struct {
	current atomic.Value // holds BillingPolicy
}

func NewBillingPolicyHolder() (*BillingPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/rentledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RENTLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingPolicy()
	v.SetDefault("billing.lateFeePercent", defaults.LateFeePercent)
	v.SetDefault("billing.lateFeeMinimum", defaults.LateFeeMinimum)
	v.SetDefault("billing.graceDays", defaults.GraceDays)
	v.SetDefault("billing.autopayProviderPrefix", defaults.AutopayProviderPrefix)
	v.SetDefault("billing.maxRentMultiplier", defaults.MaxRentMultiplier)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var policy BillingPolicy
	if err := v.UnmarshalKey("billing", &policy); err != nil {
		return nil, err
	}
	if err := validateBillingPolicy(policy); err != nil {
		return nil, err
	}

	holder := &BillingPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingPolicy
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-policy] reload failed: %v", err)
			return
		}
		if err := validateBillingPolicy(updated); err != nil {
			log.Printf("[billing-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

func (h *BillingPolicyHolder) Current() BillingPolicy {
	if v, ok := h.current.Load().(BillingPolicy); ok {
		return v
	}
	return DefaultBillingPolicy()
}

// Store replaces the active policy. Exposed for tests.
func (h *BillingPolicyHolder) Store(p BillingPolicy) {
	h.current.Store(p)
}

func validateBillingPolicy(p BillingPolicy) error {
	if p.LateFeePercent < 0 || p.LateFeePercent > 1 {
		return errors.New("lateFeePercent must be within [0,1]")
	}
	if p.LateFeeMinimum < 0 {
		return errors.New("lateFeeMinimum must not be negative")
	}
	if p.GraceDays < 0 || p.GraceDays > 28 {
		return errors.New("graceDays must be within [0,28]")
	}
	if strings.TrimSpace(p.AutopayProviderPrefix) == "" {
		return errors.New("autopayProviderPrefix is required")
	}
	if p.MaxRentMultiplier <= 0 {
		return errors.New("maxRentMultiplier must be positive")
	}
	return nil
}
