package storage

// Client stores an uploaded photo payload and returns its public URL.
type Client interface {
	UploadPhoto(accountID string, photoID string, imageData []byte) (string, error)
}
