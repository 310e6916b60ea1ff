// Package transfer hands accepted uploads to the host's transfer executor.
//
// Service is the collaborator the command handler talks to: Submit returns as
// soon as the request is accepted or rejected and never waits for the copy to
// finish. QueueService implements it by validating the request and recording a
// pending task in the transfer queue, which the executor drains on its own
// schedule.
package transfer
