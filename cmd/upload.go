/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blacktop/lipost/internal/linkedin"
	"github.com/blacktop/lipost/internal/linkedin/client"
	"github.com/blacktop/lipost/internal/linkedin/images"
	"github.com/blacktop/lipost/internal/logutil"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const stdinName = "stdin"

var (
	uploadOwner   string
	uploadImage   string
	uploadTitle   string
	uploadAltText string
	uploadMedia   bool
	uploadDryRun  bool

	initOwner string

	putURL     string
	putImage   string
	putHeaders []string
)

func newUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload an image and print its URN",
		Args:  cobra.NoArgs,
		RunE:  runUpload,
	}

	cmd.Flags().StringVarP(&uploadOwner, "owner", "o", "", "URN of the member or organization that owns the image")
	cmd.Flags().StringVarP(&uploadImage, "image", "i", "", "Path to a JPEG, PNG or GIF image (- reads stdin)")
	cmd.Flags().StringVar(&uploadTitle, "title", "", "Media title used with --media")
	cmd.Flags().StringVar(&uploadAltText, "alt-text", "", "Alternative text used with --media")
	cmd.Flags().BoolVar(&uploadMedia, "media", false, "Print a post media object instead of the bare URN")
	cmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "Validate the image without uploading")
	cmd.Flags().SortFlags = false
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	owner, err := linkedin.ParseURN(uploadOwner)
	if err != nil {
		return err
	}
	body := linkedin.NewInitializeUploadRequestBody(owner)

	var (
		filename string
		data     []byte
	)
	if uploadImage == "-" || uploadDryRun {
		filename, data, err = readImageArg(cmd, uploadImage)
		if err != nil {
			return err
		}
	}

	if uploadDryRun {
		if err := linkedin.ValidateImage(filename, data); err != nil {
			return err
		}
		fmt.Fprintf(out, "[dry-run] would upload %s (%d bytes, %s) for %s\n",
			filename, len(data), linkedin.DetectContentType(data), owner)
		return nil
	}

	conn, err := newImageConnection()
	if err != nil {
		return err
	}

	var image linkedin.URN
	if data != nil {
		res, err := conn.UploadImage(ctx, body, filename, data)
		if err != nil {
			return err
		}
		image = res.Value.Image
	} else {
		image, err = conn.UploadImageFile(ctx, body, uploadImage)
		if err != nil {
			return err
		}
	}
	logutil.Infof("uploaded %s", image)

	if !uploadMedia {
		fmt.Fprintln(out, image)
		return nil
	}

	return printJSON(out, linkedin.MediaContent{
		ID:      image,
		Title:   strings.TrimSpace(uploadTitle),
		AltText: strings.TrimSpace(uploadAltText),
	})
}

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an upload and print the pre-signed upload URL",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	cmd.Flags().StringVarP(&initOwner, "owner", "o", "", "URN of the member or organization that owns the image")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	owner, err := linkedin.ParseURN(initOwner)
	if err != nil {
		return err
	}

	conn, err := newImageConnection()
	if err != nil {
		return err
	}

	res, err := conn.InitializeUpload(cmd.Context(), linkedin.NewInitializeUploadRequestBody(owner))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "image:      %s\n", res.Value.Image)
	fmt.Fprintf(out, "upload url: %s\n", res.Value.UploadURL)
	if expires := res.Value.ExpiresAt(); !expires.IsZero() {
		fmt.Fprintf(out, "expires:    %s\n", expires.Format(time.RFC3339))
	}
	return nil
}

func newPutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put",
		Short: "PUT image bytes to an upload URL from init",
		Long: "put sends the image to a pre-signed upload URL. No LinkedIn credentials are attached; " +
			"only headers given with --header are sent.",
		Args: cobra.NoArgs,
		RunE: runPut,
	}
	cmd.Flags().StringVarP(&putURL, "url", "u", "", "Upload URL returned by init")
	cmd.Flags().StringVarP(&putImage, "image", "i", "", "Path to the image (- reads stdin)")
	cmd.Flags().StringArrayVarP(&putHeaders, "header", "H", nil, "Extra request header as Key=Value or \"Key: Value\" (repeatable)")
	cmd.Flags().SortFlags = false
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func runPut(cmd *cobra.Command, args []string) error {
	uploadURL, err := images.ParseUploadURL(putURL)
	if err != nil {
		return err
	}

	headers, err := parseHeaders(putHeaders)
	if err != nil {
		return err
	}

	filename, data, err := readImageArg(cmd, putImage)
	if err != nil {
		return err
	}

	respHeaders, err := images.PutBytes(cmd.Context(), client.NewWebRequestor(nil), uploadURL, headers, filename, data)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(respHeaders))
	for k := range respHeaders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := cmd.OutOrStdout()
	for _, k := range keys {
		fmt.Fprintf(out, "%s: %s\n", k, respHeaders[k])
	}
	return nil
}

func readImageArg(cmd *cobra.Command, path string) (string, []byte, error) {
	if path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", nil, linkedin.ValidationError{Provider: "linkedin", Reason: fmt.Sprintf("image %q not found", path)}
			}
			return "", nil, fmt.Errorf("read image: %w", err)
		}
		return filepath.Base(path), data, nil
	}

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return "", nil, errors.New("refusing to read image data from a terminal; pipe the image into stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", nil, fmt.Errorf("read stdin: %w", err)
	}
	return stdinName, data, nil
}

func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		if colon := strings.Index(raw, ":"); colon >= 0 && (!ok || colon < len(key)) {
			key, value, ok = raw[:colon], raw[colon+1:], true
		}
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q (want Key=Value)", raw)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
