package config

const (
	_etc = "/usr/local/etc/com.github.prftrack"
	_var = "/usr/local/var/com.github.prftrack"

	DEFAULT_WORKDIR     = _var
	DEFAULT_ENVFILE     = _etc + "/prf-app-excel.env"
	DEFAULT_TOKEN_CACHE = _var + "/.msgraph/tokens.json"
)
