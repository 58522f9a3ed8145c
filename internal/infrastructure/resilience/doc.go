/*
Package resilience provides the circuit breaker used for outbound fetches.

A Breaker is closed while its upstream behaves, opens once ReadyToTrip says so,
and after Timeout admits MaxRequests probes in the half-open state before
closing again:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open

Execute is generic over the request's result and can count a returned value
as a failure, which lets HTTP 5xx responses trip the breaker while still being
handed to the caller:

	resp, err := resilience.Execute(breaker, func() (*resty.Response, error) {
		return req.Get(url)
	}, func(r *resty.Response) bool { return r.StatusCode() >= 500 })

Group keeps one breaker per key, typically one per remote origin.
*/
package resilience
