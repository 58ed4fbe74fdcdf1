package shell

import (
	"regexp"
	"strings"
)

// basicPattern is the first line of defence: recursive root deletion,
// privilege escalation and dynamic evaluation.
var basicPattern = regexp.MustCompile(`(?i)(rm\s+-rf\s*/|sudo|eval|exec\s+[^&|;])`)

// dangerousPatterns contains destructive substrings, matched case-insensitively.
var dangerousPatterns = []string{
	"mkfs.",
	"dd if=/dev/",
	":(){:|:&};:", // fork bomb
	"> /dev/sd",
	"chmod -r 777 /",
	"shutdown",
	"reboot",
	"init 0",
	"init 6",
	"find / -delete",
}

// networkExfilPatterns are matched case-sensitively.
var networkExfilPatterns = []string{
	"/dev/tcp/",
	"/dev/udp/",
}

// obfuscationPatterns detect encoded payloads piped into an interpreter.
var obfuscationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`base64\s+(-d|--decode)`),
	regexp.MustCompile(`xxd\s+-r.*\|\s*(bash|sh|zsh)`),
	regexp.MustCompile(`printf\s+.*\\x[0-9a-fA-F].*\|\s*(bash|sh|zsh)`),
	regexp.MustCompile(`python[23]?\s+-c\s+.*__(import|eval|exec)__`),
	regexp.MustCompile(`perl\s+-e\s+.*system\s*\(`),
	regexp.MustCompile(`(curl|wget)\s+.*\|\s*(bash|sh|zsh)`),
}

// evasionPatterns detect commands smuggled through escapes or substitution.
var evasionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`r\\m\s`),
	regexp.MustCompile(`s\\hutdown`),
	regexp.MustCompile(`re\\boot`),
	regexp.MustCompile(`mk\\fs`),
	regexp.MustCompile(`\$'\\x[0-9a-fA-F]{2}`),
	regexp.MustCompile(`\$\(.*\brm\b.*-rf\b`),
	regexp.MustCompile("`.*(\\brm\\b.*-rf\\b)"),
}

// CheckCommandSafety returns a *BlockedCommandError when command matches the denylist.
func CheckCommandSafety(command string) error {
	if m := basicPattern.FindString(command); m != "" {
		return &BlockedCommandError{Reason: "matches " + strings.TrimSpace(m)}
	}

	lowerCmd := strings.ToLower(strings.TrimSpace(command))
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerCmd, pattern) {
			return &BlockedCommandError{Reason: "contains " + pattern}
		}
	}

	for _, pattern := range networkExfilPatterns {
		if strings.Contains(command, pattern) {
			return &BlockedCommandError{Reason: "network exfiltration via " + pattern}
		}
	}

	for _, re := range obfuscationPatterns {
		if re.MatchString(command) {
			return &BlockedCommandError{Reason: "encoded command execution"}
		}
	}

	for _, re := range evasionPatterns {
		if re.MatchString(command) {
			return &BlockedCommandError{Reason: "command evasion"}
		}
	}

	return nil
}
