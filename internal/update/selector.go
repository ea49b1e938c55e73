package update

// SelectLatestEligible returns the release with the greatest version.
// Drafts are always skipped, prereleases unless allowPrerelease, and
// releases whose tag is not a version are ignored. Equal versions keep
// the first one seen.
func SelectLatestEligible(releases []Release, allowPrerelease bool) (Release, ReleaseTarget, bool) {
	var (
		best   Release
		target ReleaseTarget
		found  bool
	)
	for _, r := range releases {
		if r.Draft || (r.Prerelease && !allowPrerelease) {
			continue
		}
		v, err := ParseVersionTag(r.Tag)
		if err != nil {
			continue
		}
		if !found || v.Compare(target.Version) > 0 {
			best, target, found = r, ReleaseTarget{Tag: r.Tag, Version: v}, true
		}
	}
	return best, target, found
}

// SelectByTag returns the release whose tag equals tag exactly, whatever
// its draft or prerelease state.
func SelectByTag(releases []Release, tag string) (Release, bool) {
	for _, r := range releases {
		if r.Tag == tag {
			return r, true
		}
	}
	return Release{}, false
}

// noValidReleaseError tells "everything is a prerelease" apart from
// "nothing matched", so the caller can suggest --prerelease.
func noValidReleaseError(releases []Release, allowPrerelease bool) *Error {
	published := 0
	prereleases := 0
	for _, r := range releases {
		if r.Draft {
			continue
		}
		published++
		if r.Prerelease {
			prereleases++
		}
	}
	if !allowPrerelease && published > 0 && prereleases == published {
		return newError(KindNoValidRelease, "only prerelease releases; use --prerelease", nil)
	}
	return newError(KindNoValidRelease, "no matching release", nil)
}
