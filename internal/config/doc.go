// Package config loads listfeed's TOML configuration.
//
// # Resolution
//
//  1. Use the explicit path when given (--config), else
//     ~/.config/listfeed/config.toml.
//  2. A missing file is not an error; defaults apply.
//  3. Blank values fall back to defaults.
//  4. LISTFEED_* environment variables override the file. A .env file in the
//     working directory is read with godotenv and sits beneath the real
//     process environment.
//
// # Keys
//
//	users_url       = "https://jsonplaceholder.typicode.com/users"
//	musicians_url   = "https://rss.applemarketingtools.com/api/v2/us/music/most-played/10/albums.json"
//	request_timeout = "10s"   # "0" disables the client timeout
//	user_agent      = "listfeed/0.1"
//	log_file        = "~/.local/state/listfeed/listfeed.log"
//	log_level       = "info"
//	metrics_addr    = ""      # e.g. "127.0.0.1:9464"
//	refresh_every   = ""      # e.g. "2m"
//
// Tilde expansion is applied to log_file and the config path.
//
// # Errors
//
// Invalid TOML and unparsable or negative durations return an error that
// mentions "parse config". Read failures other than a missing file are
// returned as-is.
package config
