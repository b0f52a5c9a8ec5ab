/*
Package resilience provides a circuit breaker for outbound calls.

The matstat client wraps every request to the stats service in a breaker so
a failing server is not hammered with retries. Client errors (4xx) are not
failures; only transport errors and 5xx responses count.

# States

  - Closed: calls pass through and outcomes are counted
  - Open: calls fail with ErrOpen until the cooldown elapses
  - Half-Open: up to MaxProbes calls probe the dependency

	Closed --[ShouldTrip]-> Open --[Cooldown]-> Half-Open --[MaxProbes successes]-> Closed
	                                               |
	                                           [failure]
	                                               v
	                                             Open

# Usage

	breaker := resilience.New("matstat-api", resilience.Settings{
		MaxProbes: 2,
		Cooldown:  15 * time.Second,
		ShouldTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	resp, err := resilience.Do(breaker, func() (*resty.Response, error) {
		return req.Post("/stats")
	})
*/
package resilience
