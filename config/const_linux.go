package config

const (
	_etc = "/usr/local/etc/prf-app-excel"
	_var = "/usr/local/var/prf-app-excel"

	DEFAULT_WORKDIR     = _var
	DEFAULT_ENVFILE     = _etc + "/prf-app-excel.env"
	DEFAULT_TOKEN_CACHE = _var + "/.msgraph/tokens.json"
)
