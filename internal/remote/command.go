package remote

import (
	"github.com/kballard/go-shellquote"
)

// Command is a shell command line plus how to run it.
type Command struct {
	Script string
	Sudo   bool
	User   string
	Dir    string
}

// Run returns a command executed as the login user.
func Run(script string) Command {
	return Command{Script: script}
}

// Sudo returns a command executed as root.
func Sudo(script string) Command {
	return Command{Script: script, Sudo: true}
}

// In runs the command from dir.
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// As runs the command as user through sudo.
func (c Command) As(user string) Command {
	c.Sudo = true
	c.User = user
	return c
}

// String renders the command line sent to the remote shell.
func (c Command) String() string {
	script := c.Script
	if c.Dir != "" {
		script = "cd " + shellquote.Join(c.Dir) + " && " + script
	}

	var args []string
	if c.Sudo {
		args = append(args, "sudo", "-H")
		if c.User != "" {
			args = append(args, "-u", c.User)
		}
	}
	args = append(args, "bash", "-l", "-c", script)
	return shellquote.Join(args...)
}

// Quote shell-quotes one word.
func Quote(s string) string {
	return shellquote.Join(s)
}
