package restexecutor

import (
	"fmt"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/procon-tools/go-procon/file"
	"github.com/procon-tools/go-procon/filestore"
)

type fileHandle struct {
	fs filestore.FileStore
}

// NewFileHandle creates a new file handle serving kept artifacts
func NewFileHandle(fs filestore.FileStore) Register {
	return &fileHandle{
		fs: fs,
	}
}

func (f *fileHandle) Register(r *gin.Engine) {
	// File handle
	r.GET("/file", f.fileGet)
	r.GET("/file/:fid", f.fileIDGet)
	r.DELETE("/file/:fid", f.fileIDDelete)
}

type fileURI struct {
	FileID string `uri:"fid"`
}

func (f *fileHandle) fileGet(c *gin.Context) {
	ids := f.fs.List()
	c.JSON(http.StatusOK, ids)
}

func (f *fileHandle) fileIDGet(c *gin.Context) {
	var uri fileURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	name, fi := f.fs.Get(uri.FileID)
	if fi == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	typ := mime.TypeByExtension(path.Ext(name))

	if l, ok := fi.(file.Local); ok { // fast path
		c.Header("Content-Type", typ)
		c.FileAttachment(l.Path(), name)
		return
	}

	content, err := fi.Content()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Data(http.StatusOK, typ, content)
}

func (f *fileHandle) fileIDDelete(c *gin.Context) {
	var uri fileURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	ok := f.fs.Remove(uri.FileID)
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}
