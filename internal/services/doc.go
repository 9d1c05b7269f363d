// Package services provides clients for the backends the connection flow talks to.
//
// [Backend] is the content platform's social-connection REST surface: provider
// configuration checks, the connection list, authorization-URL minting,
// disconnects, and health tests. [APIClient] is its HTTP implementation.
//
// [DirectOAuth] covers the generic bring-your-own-app provider, which is
// authorized directly against user-supplied OAuth2 endpoints rather than
// through the backend's registered applications.
package services
