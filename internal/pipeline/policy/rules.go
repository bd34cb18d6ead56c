package policy

// family selects the comment/string stripping strategy and the import
// statement syntax for a language.
type family int

const (
	familyCLike family = iota
	familyPythonLike
	familyJavaLike
)

// rule is the static policy for one language: banned import/module names
// and banned bare tokens. Unlisted languages carry no restriction.
type rule struct {
	family  family
	modules []string
	tokens  []string
}

var defaultRules = map[string]rule{
	"c": {
		family: familyCLike,
		modules: []string{
			"unistd.h",
			"dirent.h",
			"netdb.h",
			"sys/socket.h",
			"sys/ptrace.h",
			"sys/wait.h",
		},
		tokens: []string{
			"system", "fork", "vfork", "popen",
			"execve", "execvp", "execl", "execlp",
		},
	},
	"cpp": {
		family: familyCLike,
		modules: []string{
			"unistd.h",
			"dirent.h",
			"netdb.h",
			"sys/socket.h",
			"sys/ptrace.h",
			"sys/wait.h",
			"fstream",
			"filesystem",
		},
		tokens: []string{
			"system", "fork", "vfork", "popen",
			"execve", "execvp", "execl", "execlp",
		},
	},
	"java": {
		family: familyJavaLike,
		modules: []string{
			"java.net",
			"java.nio.file",
			"java.lang.reflect",
			"javax.script",
		},
		tokens: []string{
			"Runtime", "ProcessBuilder",
		},
	},
	"python": {
		family: familyPythonLike,
		modules: []string{
			"os", "sys", "subprocess", "socket",
			"shutil", "importlib", "ctypes", "signal",
		},
		tokens: []string{
			"eval", "exec", "open", "compile",
			"__import__", "breakpoint",
		},
	},
}
