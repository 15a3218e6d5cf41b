package vlmchat

// Version is overridden at build time with -ldflags "-X github.com/a-h/vlmchat.Version=...".
var Version = "dev"
