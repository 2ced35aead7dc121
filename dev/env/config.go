package devenv

// SlcTestConfig is read from dev/.state/slc_config.json5 by live tests.
type SlcTestConfig struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	SecretAnswer string `json:"secret_answer"`
}
