package gangway

// Version is the current release of the Gangway engine.
const Version = "0.4.1"
