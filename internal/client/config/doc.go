// Package config loads runtime settings for the MedTrack CLI.
//
// Sources are applied in order, later ones winning:
// built-in defaults, a .env file in the working directory, a JSON file
// given via -c/-config, and finally command-line flags.
package config
