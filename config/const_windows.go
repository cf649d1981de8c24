package config

const (
	_etc = `C:\ProgramData\prf-app-excel`
	_var = `C:\ProgramData\prf-app-excel`

	DEFAULT_WORKDIR     = _var
	DEFAULT_ENVFILE     = _etc + `\prf-app-excel.env`
	DEFAULT_TOKEN_CACHE = _var + `\.msgraph\tokens.json`
)
