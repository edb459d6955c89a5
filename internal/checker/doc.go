// Package checker implements takeover-risk classification for hostnames
// fronted by an edge service.
//
// Architecture overview:
//
//   - DNSResolver and HTTPProber are the only network-facing pieces. Both
//     fold every failure into data (Absent, Unreachable) instead of errors.
//   - The heuristics in frontdoor.go (IsFrontDoorTarget, SuffixShape,
//     Fingerprint, VerificationAbsent) are pure and never touch the network.
//   - TakeoverChecker wires a Resolver and a Prober into the decision tree
//     and returns one verdict.Verdict per hostname.
//   - Runner fans classifications out over a bounded worker pool with an
//     optional rate limit and reassembles them in input order.
package checker
