/*
Package bridge implements the secure messaging channel between a sketch
execution context and its controlling surface.

Every inbound event passes a guard pipeline before a handler sees it:

 1. Origin: exact match against the allowed set, or allowed origin plus an
    all-digit port. Unanchored prefixes never match, so
    "http://localhost-attacker.com" is rejected when "http://localhost"
    is allowed while "http://localhost:5173" is accepted.
 2. Source: when an expected sender is configured, the event's sender must
    be that exact value.
 3. Shape: the payload must be an object with a string "type".
 4. Identity: optional sketch-instance scoping, so several mounted
    sketches on one page cannot cross-talk.
 5. Type: only registered message types are dispatched.

Payloads are deep-cloned before dispatch and handler panics are contained,
so one misbehaving handler cannot break delivery for later events.

Resize reports are additionally throttled with trailing-edge coalescing:
within one throttle window only the most recent distinct size survives.
Reset clears the throttle memory before a re-run so a sketch that lands on
the same final size as the previous run still notifies the controller.
*/
package bridge
