// Package drive implements the storage operations of the gateway against the
// Google Drive v3 REST API.
//
// Every operation goes through a gateway.Doer, so each call is authenticated
// with its own credential and every failure is a *gateway.Failure:
//
//	d, _ := gateway.New(provider)
//	client := drive.NewClient(d)
//
//	list, err := client.ListFiles(ctx, drive.ListOptions{Query: "name contains 'report'"})
//	if err != nil {
//	    f := gateway.AsFailure(err)
//	    ...
//	}
//
// Wire types from google.golang.org/api/drive/v3 are used for decoding and are
// converted into the package's own FileInfo and Permission types.
//
// Downloads are capped at MaxDownloadSize. The declared size is checked
// before any content is requested, and files without a declared size
// (Google Docs, Sheets and Slides) are refused.
package drive
