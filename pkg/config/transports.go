package config

// TransportConfig describes the channel link between host and UI.
// Example YAML:
// transport:
//   kind: tcp
//   listen: ["127.0.0.1:7341"]
//   dial: "127.0.0.1:7341"
//   format: cbor
//   compress: true
//
// Other kinds: quic (same address form), winpipe (listen: ["\\\\.\\pipe\\fbbridge"]),
// mem (in-process, tests only).
type TransportConfig struct {
	Kind string `mapstructure:"kind"`
	// Listen addresses, used by the host
	Listen []string `mapstructure:"listen"`
	// Dial address, used by the UI
	Dial string `mapstructure:"dial"`
	// Format of outgoing frames: json, cbor or proto
	Format string `mapstructure:"format"`
	// Compress outgoing frame bodies with zstd
	Compress bool `mapstructure:"compress"`
}
