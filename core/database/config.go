package database

// Config holds configuration for the state database connection.
type Config struct {
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Path is the sqlite database file. Use ":memory:" for a throwaway database.
	Path string `mapstructure:"path" default:"watchstate.db"`
	// Host is the mysql host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the mysql port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the mysql user.
	User string `mapstructure:"user" default:"root"`
	// Password is the mysql password.
	Password string `mapstructure:"password" default:""`
	// Name is the mysql database name.
	Name string `mapstructure:"name" default:"watchstate"`
	// TimeoutSeconds bounds connection setup and each I/O operation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
