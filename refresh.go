package staticcache

// Refresh revalidates every url in one pass and returns the number of
// failures. Failures are logged and do not stop the sweep, so one
// unreachable resource cannot keep the rest from staying current.
func (c *StaticCache) Refresh(urls []string) int {
	failures := 0
	for _, url := range urls {
		if _, err := c.Get(url); err != nil {
			c.log.Warn().Err(err).Str("url", url).Msg("Could not refresh resource")
			failures++
		}
	}
	if failures > 0 {
		c.log.Debug().Int("failures", failures).Int("resources", len(urls)).Msg("Refresh pass done with failures")
	} else {
		c.log.Trace().Int("resources", len(urls)).Msg("Refresh pass done")
	}
	return failures
}
