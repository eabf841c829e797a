package config

// DB holds the database configuration settings.
type DB struct {
	// Driver selects the database engine: mysql, postgres or sqlite.
	Driver   string
	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	// Path is the database file location when Driver is sqlite.
	Path string
}
