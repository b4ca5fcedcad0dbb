package transfer

type PlatformCredentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
