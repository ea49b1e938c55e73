package main

import (
	"errors"
	"strings"

	"github.com/ishibashi-futos/oxide-sub000/internal/exitcodes"
	ui "github.com/ishibashi-futos/oxide-sub000/internal/ui"
	"github.com/ishibashi-futos/oxide-sub000/internal/update"
)

var errNeedsConfirmation error = exitcodes.PreconditionError("confirmation required: re-run with --yes")

// describeError turns err into an actionable message. Self-update errors
// get kind-specific causes and hints.
func describeError(err error) ui.ErrorMessage {
	msg := ui.ErrorMessage{Problem: err.Error()}

	var ue *update.Error
	if !errors.As(err, &ue) {
		return msg
	}

	switch ue.Kind {
	case update.KindNetwork:
		msg.Causes = []string{"GitHub is unreachable from this machine", "a proxy is intercepting HTTPS"}
		msg.Actions = []string{"check your network connection and try again"}
		msg.Hints = []string{"behind a TLS-inspecting proxy, set self_update.ca_file or pass --insecure"}
	case update.KindAPIMessage:
		msg.Causes = []string{"the GitHub API rejected the request (rate limit or unknown repository)"}
		msg.Hints = []string{"check self_update.repo in config.toml"}
	case update.KindTLSConfig:
		msg.Causes = []string{"self_update.ca_file is unreadable or holds no PEM certificates"}
		msg.Actions = []string{"point self_update.ca_file at a PEM bundle"}
	case update.KindNoValidRelease:
		if strings.Contains(ue.Detail, "--prerelease") {
			msg.Hints = []string{"use --prerelease to consider prereleases"}
		} else {
			msg.Causes = []string{"no published release has a semver tag"}
		}
	case update.KindReleaseNotFound:
		msg.Causes = []string{"the tag does not exist or is spelled differently"}
		msg.Hints = []string{"tags are matched exactly, including the leading v"}
	case update.KindPrereleaseNotAllowed:
		msg.Hints = []string{"use --prerelease to install a prerelease"}
	case update.KindJSON, update.KindMissingField:
		msg.Causes = []string{"the release feed returned an unexpected payload"}
		msg.Hints = []string{"check self_update.api_url in config.toml"}
	case update.KindVersionParse:
		msg.Causes = []string{"a tag or " + update.BuildVersionEnv + " is not a major.minor.patch version"}
	case update.KindInvalidDigest, update.KindMissingDownloadURL:
		msg.Causes = []string{"the release asset is incomplete"}
		msg.Actions = []string{"install a different release with --tag"}
	case update.KindDigestMismatch:
		msg.Causes = []string{"the download was corrupted or tampered with"}
		msg.Actions = []string{"retry; nothing was installed"}
	case update.KindMissingBinaryInArchive:
		msg.Causes = []string{"the archive does not contain an ox executable"}
		msg.Actions = []string{"install a different release with --tag"}
	case update.KindIO:
		msg.Causes = []string{"the install directory is not writable"}
		msg.Hints = []string{"ox self-update backups lists binaries you can restore"}
	}
	return msg
}
