package policy

// Key names a stored security parameter.
type Key string

const (
	KeyAdvancedEnabled       Key = "use_advanced_security_parameters"
	KeyEncryptionEnabled     Key = "enable_password_encryption"
	KeyEncryptionAlgorithm   Key = "encryption_algorithm"
	KeyForceChangeAfterReset Key = "force_change_password_reinit"
	KeyMinimumLength         Key = "password_minimum_length"
	KeyFormatRequired        Key = "password_format"
	KeyDurationDays          Key = "password_duration"
	KeyHistorySize           Key = "password_history_size"
	KeyMaxChanges            Key = "maximum_number_password_change"
	KeyMaxChangesWindowDays  Key = "tsw_size_password_change"
	KeyAccountLifetimeMonths Key = "account_life_time"
	KeyAlertLeadTime         Key = "time_before_alert_account"
	KeyAlertCount            Key = "nb_alert_account"
	KeyAlertInterval         Key = "time_between_alerts_account"
	KeyFailureMax            Key = "access_failures_max"
	KeyFailureInterval       Key = "access_failures_interval"
)

// Keys lists every recognized parameter, in rendering order.
var Keys = []Key{
	KeyEncryptionEnabled,
	KeyEncryptionAlgorithm,
	KeyForceChangeAfterReset,
	KeyMinimumLength,
	KeyAdvancedEnabled,
	KeyFormatRequired,
	KeyDurationDays,
	KeyHistorySize,
	KeyMaxChanges,
	KeyMaxChangesWindowDays,
	KeyAccountLifetimeMonths,
	KeyAlertLeadTime,
	KeyAlertCount,
	KeyAlertInterval,
	KeyFailureMax,
	KeyFailureInterval,
}

// advancedKeys are only rendered and updated while advanced parameters are on.
var advancedKeys = []Key{
	KeyFormatRequired,
	KeyDurationDays,
	KeyHistorySize,
	KeyMaxChanges,
	KeyMaxChangesWindowDays,
}

// Updatable base keys. The advanced flag and the encryption settings are only
// changed through EnableAdvanced and DisableAdvanced.
var (
	leadingUpdateKeys = []Key{
		KeyForceChangeAfterReset,
		KeyMinimumLength,
	}
	trailingUpdateKeys = []Key{
		KeyAccountLifetimeMonths,
		KeyAlertLeadTime,
		KeyAlertCount,
		KeyAlertInterval,
		KeyFailureMax,
		KeyFailureInterval,
	}
)

var boolKeys = map[Key]bool{
	KeyAdvancedEnabled:       true,
	KeyEncryptionEnabled:     true,
	KeyForceChangeAfterReset: true,
	KeyFormatRequired:        true,
}

// IsKnown reports whether name is a recognized parameter key.
func IsKnown(name string) bool {
	for _, k := range Keys {
		if string(k) == name {
			return true
		}
	}
	return false
}

func isAdvanced(k Key) bool {
	for _, a := range advancedKeys {
		if a == k {
			return true
		}
	}
	return false
}
