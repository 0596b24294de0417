package registry

// CachePathForTest exposes the disk cache location of name.
func (c *Client) CachePathForTest(name string) string {
	return c.cachePath(name)
}

// PackageURLForTest exposes the document URL of name.
func (c *Client) PackageURLForTest(name string) string {
	return c.packageURL(name)
}
