package core

// TestingT is the subset of *testing.T used by AssertThat.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
}

// AssertThat reports a test failure when m does not match actual.
func AssertThat(t TestingT, actual any, m Matcher) bool {
	t.Helper()
	if m.Matches(actual) {
		return true
	}
	mismatch := NewDescription()
	m.DescribeMismatch(actual, mismatch)
	t.Errorf("\nExpected: %s\n     but: %s", Describe(m), mismatch.String())
	return false
}
