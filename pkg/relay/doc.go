/*
Package relay forwards a board image and a prompt to a vision-capable chat-completion API.

Service is the server side: it validates the request, attaches the server-held API key of
the chosen provider and sends a single user message carrying the prompt text and the
inline image. It never accepts a client credential and never retries. Failures come back
as *Error values carrying the HTTP status to answer with.

Client is the consumer side, used by the CLI against a running relay.
*/
package relay
