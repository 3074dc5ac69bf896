package storage

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

var settingKeys = []string{constants.SettingTimezone, constants.SettingCutoffTime}

// LoadSettings reads settings from kv, filling defaults for missing keys.
func LoadSettings(kv KV) (models.Settings, error) {
	data := make(map[string]string, len(settingKeys))
	for _, key := range settingKeys {
		value, found, err := kv.Get(constants.SettingKeyPrefix + key)
		if err != nil {
			return models.Settings{}, fmt.Errorf("failed to read setting %s: %w", key, err)
		}
		if found {
			data[key] = value
		}
	}

	settings := models.MapToSettings(data)
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// SaveSettings writes every setting to kv.
func SaveSettings(kv KV, settings models.Settings) error {
	for key, value := range models.SettingsToMap(settings) {
		if err := kv.Set(constants.SettingKeyPrefix+key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return nil
}

// EnsureDefaultSettings writes the default value of every setting that has
// never been saved. Existing values are kept.
func EnsureDefaultSettings(kv KV) error {
	defaults := models.SettingsToMap(models.Settings{
		Timezone:   constants.DefaultTimezone,
		CutoffTime: constants.DefaultCutoffTime,
	})
	for _, key := range settingKeys {
		_, found, err := kv.Get(constants.SettingKeyPrefix + key)
		if err != nil {
			return fmt.Errorf("failed to read setting %s: %w", key, err)
		}
		if found {
			continue
		}
		if err := kv.Set(constants.SettingKeyPrefix+key, defaults[key]); err != nil {
			return fmt.Errorf("failed to save default setting %s: %w", key, err)
		}
	}
	return nil
}
