package cfg

type Cfg struct {
	ConfigPath string
	UserAgent  string
	Timezone   string
	Debug      bool
	Version    string
}
