// package services defines the narrow interfaces to the external
// collaborators, the OAuth token provider and the remote photo-library API,
// together with their production implementations.
package services
