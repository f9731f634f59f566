package commands

// legacyCommands maps the historical single-dash mode flags to subcommands.
var legacyCommands = map[string]string{
	"-a":  "all",
	"-bc": "between-commits",
	"-bt": "between-tags",
	"-c":  "commit",
	"-h":  "--help",
}

// TranslateLegacyArgs rewrites "refmine -bc repo a b" style invocations into
// their subcommand form. Other argument lists are returned unchanged.
func TranslateLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	sub, ok := legacyCommands[args[0]]
	if !ok {
		return args
	}

	out := make([]string, 0, len(args))
	out = append(out, sub)

	return append(out, args[1:]...)
}
