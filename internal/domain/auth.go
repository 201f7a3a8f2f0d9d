package domain

// CredentialHeader carries the admin PIN on write requests. The PIN is an
// opaque per-call string; nothing on the client persists it.
const CredentialHeader = "x-admin-pin"
